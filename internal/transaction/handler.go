package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbecker/splitpool/pkg/response"
)

// Handler handles HTTP requests for transaction operations
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for transaction endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /transactions
// @Summary      Create a new transaction
// @Description  Create a purchase (with optional itemized positions) or a transfer with weighted creditor/debitor shares
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body CreateTransactionRequest true "Transaction creation request"
// @Success      201 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /transactions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if isValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create transaction")
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// List handles GET /transactions
// @Summary      List transactions
// @Description  List non-deleted transactions, newest first
// @Tags         transactions
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Router       /transactions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	transactions, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	responses := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = t.ToResponse()
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// GetByID handles GET /transactions/{id}
// @Summary      Get transaction by ID
// @Tags         transactions
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /transactions/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	t, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get transaction")
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Update handles PUT /transactions/{id}
// @Summary      Update a transaction
// @Description  Replace a transaction's value, shares, and positions
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Param        request body UpdateTransactionRequest true "Transaction update request"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /transactions/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if isValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update transaction")
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Delete handles DELETE /transactions/{id}
// @Summary      Soft-delete a transaction
// @Tags         transactions
// @Param        id path int true "Transaction ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /transactions/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
