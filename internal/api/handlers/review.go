package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"txrecon/internal/api/dto"
	"txrecon/internal/api/middleware"
	"txrecon/internal/application/recon"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/storage"
)

// ReviewHandler handles review decisions on transactions.
type ReviewHandler struct {
	*Base
	service *recon.Service
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(repo storage.Repository, service *recon.Service) *ReviewHandler {
	return &ReviewHandler{
		Base:    NewBase(repo),
		service: service,
	}
}

// Review handles POST /api/transactions/{id}/review - applies an approver's
// decision. The reviewer id comes from the authenticated token subject.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	reviewerID := middleware.SubjectFromContext(r.Context())

	tx, err := h.service.Review(id, transaction.ReviewStatus(req.Status), reviewerID, req.Feedback)
	if err != nil {
		var invalidErr *recon.InvalidStatusError
		if errors.As(err, &invalidErr) {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(invalidErr.Error()))
			return
		}
		var nfErr *storage.NotFoundError
		if errors.As(err, &nfErr) {
			h.WriteError(w, http.StatusNotFound, dto.NotFoundError("transaction"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toTransactionResponse(tx))
}
