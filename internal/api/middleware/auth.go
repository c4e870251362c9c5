package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"txrecon/internal/api/dto"
)

type contextKey string

// SubjectKey carries the authenticated subject (reviewer id) in the
// request context.
const SubjectKey contextKey = "subject"

// Claims are the JWT claims the API expects.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}

// RequireRole returns middleware that verifies a Bearer token signed with
// the given secret and requires the token's role claim to equal role. The
// token subject is stored in the request context for handlers.
func RequireRole(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeAuthError(w, http.StatusUnauthorized, dto.UnauthorizedError("authentication is not configured"))
				return
			}

			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, dto.UnauthorizedError("missing bearer token"))
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, http.StatusUnauthorized, dto.UnauthorizedError("invalid token"))
				return
			}

			if claims.Role != role {
				writeAuthError(w, http.StatusForbidden, dto.ForbiddenError("insufficient role"))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, apiErr dto.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
