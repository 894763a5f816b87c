package balance

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbecker/splitpool/internal/balance/engine"
	"github.com/mbecker/splitpool/pkg/response"
)

// Handler handles HTTP requests for balance computations
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/settlement-plan", h.SettlementPlan)
	r.Get("/{accountId}", h.GetByAccount)
	r.Get("/{accountId}/history", h.History)

	return r
}

// List handles GET /balances
// @Summary      Compute all balances
// @Description  Compute every account's resolved balance over the current snapshot; clearing pools are fully distributed
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      422 {object} response.APIResponse
// @Router       /balances [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ComputeAll(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	ids := make([]int64, 0, len(result.Balances))
	for id := range result.Balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	responses := make([]*BalanceResponse, len(ids))
	for i, id := range ids {
		responses[i] = toBalanceResponse(id, result.Balances[id])
	}
	response.JSON(w, http.StatusOK, responses)
}

// GetByAccount handles GET /balances/{accountId}
// @Summary      Get one account's balance
// @Tags         balances
// @Produce      json
// @Param        accountId path int true "Account ID"
// @Success      200 {object} response.APIResponse{data=BalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /balances/{accountId} [get]
func (h *Handler) GetByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	balance, err := h.service.AccountBalance(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		writeEngineError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toBalanceResponse(accountID, *balance))
}

// History handles GET /balances/{accountId}/history
// @Summary      Get one account's balance history
// @Description  Time-ordered contributions from transactions and clearing resolutions with a running balance
// @Tags         balances
// @Produce      json
// @Param        accountId path int true "Account ID"
// @Success      200 {object} response.APIResponse{data=[]HistoryEntryResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /balances/{accountId}/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return
	}

	entries, err := h.service.History(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		writeEngineError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toHistoryResponse(entries))
}

// SettlementPlan handles GET /balances/settlement-plan
// @Summary      Compute the settlement plan
// @Description  Greedy minimal list of payments that zeroes all personal balances; items are directives, not booked transactions
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SettlementPlanItemResponse}
// @Failure      422 {object} response.APIResponse
// @Router       /balances/settlement-plan [get]
func (h *Handler) SettlementPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.SettlementPlan(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toPlanResponse(plan))
}

// writeEngineError maps the engine's two error kinds onto HTTP:
// validation errors are the caller's inconsistent data (422),
// consistency errors are our bug (500).
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, engine.ErrConsistency):
		response.Error(w, http.StatusInternalServerError, "CONSISTENCY_ERROR", err.Error())
	default:
		response.InternalError(w, "Failed to compute balances")
	}
}
