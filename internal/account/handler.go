package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbecker/splitpool/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
}

// NewHandler creates a new account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for account endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /accounts
// @Summary      Create a new account
// @Description  Create a personal or clearing account; clearing accounts carry weighted shares distributing their pool
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account creation request"
// @Success      201 {object} response.APIResponse{data=AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /accounts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	account, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if isAccountValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create account")
		return
	}

	response.JSON(w, http.StatusCreated, account.ToResponse())
}

// List handles GET /accounts
// @Summary      List accounts
// @Description  List accounts; pass include_deleted=true to include soft-deleted ones
// @Tags         accounts
// @Produce      json
// @Param        include_deleted query bool false "Include soft-deleted accounts"
// @Success      200 {object} response.APIResponse{data=[]AccountResponse}
// @Router       /accounts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	accounts, err := h.service.List(r.Context(), includeDeleted)
	if err != nil {
		response.InternalError(w, "Failed to list accounts")
		return
	}

	responses := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = a.ToResponse()
	}
	response.JSON(w, http.StatusOK, responses)
}

// GetByID handles GET /accounts/{id}
// @Summary      Get account by ID
// @Tags         accounts
// @Produce      json
// @Param        id path int true "Account ID"
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	account, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get account")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}

// Update handles PUT /accounts/{id}
// @Summary      Update an account
// @Description  Update name, description, owner, or replace the clearing shares
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path int true "Account ID"
// @Param        request body UpdateAccountRequest true "Account update request"
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	account, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if isAccountValidationErr(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update account")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}

// Delete handles DELETE /accounts/{id}
// @Summary      Soft-delete an account
// @Description  Mark an account as deleted; historical balances still resolve against it
// @Tags         accounts
// @Param        id path int true "Account ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /accounts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isAccountValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidAccountType) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNegativeShareWeight) ||
		errors.Is(err, ErrSharesOnPersonal) ||
		errors.Is(err, ErrSelfShare) ||
		errors.Is(err, ErrShareTargetNotFound) ||
		errors.Is(err, ErrShareTargetDeleted)
}
