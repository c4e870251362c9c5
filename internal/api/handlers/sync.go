package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"txrecon/internal/api/dto"
	"txrecon/internal/application/recon"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/storage"
)

// SyncHandler triggers ingest runs against source APIs.
type SyncHandler struct {
	*Base
	service *recon.Service
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(repo storage.Repository, service *recon.Service) *SyncHandler {
	return &SyncHandler{
		Base:    NewBase(repo),
		service: service,
	}
}

// Sync handles POST /api/sync/{source} - fetches and ingests a batch of
// payloads from the named source.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	source := transaction.Source(chi.URLParam(r, "source"))
	if !source.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unknown source"))
		return
	}

	pageSize := ParseIntParam(r, "page_size", 0)

	result, err := h.service.Sync(r.Context(), source, pageSize)
	if err != nil {
		h.WriteError(w, http.StatusBadGateway, dto.NewAPIError(dto.ErrCodeInternalError, err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.SyncResponse{
		RunID:     result.RunID,
		Source:    string(source),
		Found:     result.Found,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
	})
}
