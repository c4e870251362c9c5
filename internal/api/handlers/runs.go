package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"txrecon/internal/api/dto"
	"txrecon/internal/infrastructure/storage"
)

// RunsHandler handles ingest run HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent ingest runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListIngestRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.IngestRunListResponse{
		Runs:  make([]dto.IngestRunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toIngestRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single ingest run.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetIngestRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("ingest run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toIngestRunResponse(*run))
}

// toIngestRunResponse converts a storage IngestRun to an API response.
func toIngestRunResponse(run storage.IngestRun) dto.IngestRunResponse {
	return dto.IngestRunResponse{
		ID:                run.ID,
		Source:            run.Source,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		PageSize:          run.PageSize,
		PayloadsFound:     run.PayloadsFound,
		PayloadsProcessed: run.PayloadsProcessed,
		PayloadsSkipped:   run.PayloadsSkipped,
		PayloadsErrored:   run.PayloadsErrored,
		Status:            run.Status,
	}
}
