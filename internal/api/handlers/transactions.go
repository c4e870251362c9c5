package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"txrecon/internal/api/dto"
	"txrecon/internal/application/recon"
	"txrecon/internal/domain/normalizer"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	*Base
	service *recon.Service
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo storage.Repository, service *recon.Service) *TransactionsHandler {
	return &TransactionsHandler{
		Base:    NewBase(repo),
		service: service,
	}
}

// List handles GET /api/transactions - returns a filtered list of
// transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := storage.TransactionFilters{
		Source:        transaction.Source(r.URL.Query().Get("source")),
		ReviewStatus:  transaction.ReviewStatus(r.URL.Query().Get("review_status")),
		UnmatchedOnly: ParseBoolParam(r, "unmatched", false),
		Limit:         ParseIntParam(r, "limit", 50),
		Offset:        ParseIntParam(r, "offset", 0),
	}

	if filters.Source != "" && !filters.Source.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unknown source"))
		return
	}

	txns, err := h.repo.ListTransactions(filters)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
		Count:        len(txns),
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	}
	for _, tx := range txns {
		response.Transactions = append(response.Transactions, toTransactionResponse(tx))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/transactions/{id} - returns a single transaction.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	tx, err := h.repo.GetTransaction(id)
	if err != nil {
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

// Ingest handles POST /api/transactions/ingest - normalizes and stores one
// raw payload.
func (h *TransactionsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	source := transaction.Source(req.Source)
	if !source.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("unknown source"))
		return
	}
	if len(req.RawData) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("raw_data is required"))
		return
	}

	tx, err := h.service.IngestPayload(r.Context(), source, req.RawData)
	if err != nil {
		var vErr *normalizer.ValidationError
		if errors.As(err, &vErr) {
			h.WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(vErr.Reason))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, toTransactionResponse(tx))
}
