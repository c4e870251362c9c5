package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"txrecon/internal/api/dto"
	"txrecon/internal/application/recon"
	"txrecon/internal/infrastructure/storage"
)

// MatchHandler handles match scoring requests.
type MatchHandler struct {
	*Base
	service *recon.Service
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(repo storage.Repository, service *recon.Service) *MatchHandler {
	return &MatchHandler{
		Base:    NewBase(repo),
		service: service,
	}
}

// Score handles POST /api/match/score - returns the confidence breakdown
// for a stored candidate pair.
func (h *MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.TransactionID == "" || req.CandidateID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction_id and candidate_id are required"))
		return
	}

	result, err := h.service.ScorePair(req.TransactionID, req.CandidateID)
	if err != nil {
		var nfErr *storage.NotFoundError
		if errors.As(err, &nfErr) {
			h.WriteError(w, http.StatusNotFound, dto.NotFoundError("transaction"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.MatchScoreResponse{
		TransactionID: req.TransactionID,
		CandidateID:   req.CandidateID,
		Score:         result.Score,
		Band:          result.Band(),
		Factors:       make([]dto.MatchFactorResponse, 0, len(result.Factors)),
		Calculations:  result.Calculations,
	}
	for _, factor := range result.Factors {
		response.Factors = append(response.Factors, dto.MatchFactorResponse{
			Name:        factor.Name,
			Weight:      factor.Weight,
			Value:       factor.Value,
			Explanation: factor.Explanation,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
