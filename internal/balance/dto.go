package balance

import (
	"github.com/mbecker/splitpool/internal/balance/engine"
)

// BalanceResponse represents the resolved balance of one account
type BalanceResponse struct {
	AccountID          int64             `json:"account_id"`
	Balance            float64           `json:"balance"`
	TotalPaid          float64           `json:"total_paid"`
	TotalConsumed      float64           `json:"total_consumed"`
	ClearingResolution map[int64]float64 `json:"clearing_resolution,omitempty"`
}

// HistoryOriginResponse identifies what produced a history entry
type HistoryOriginResponse struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// HistoryEntryResponse is one step of an account's balance history
type HistoryEntryResponse struct {
	Time    string                `json:"time"`
	Change  float64               `json:"change"`
	Balance float64               `json:"balance"`
	Origin  HistoryOriginResponse `json:"origin"`
}

// SettlementPlanItemResponse is a single suggested payment
type SettlementPlanItemResponse struct {
	CreditorID int64   `json:"creditor_id"`
	DebitorID  int64   `json:"debitor_id"`
	Amount     float64 `json:"amount"`
}

func toBalanceResponse(accountID int64, b engine.Balance) *BalanceResponse {
	return &BalanceResponse{
		AccountID:          accountID,
		Balance:            b.Balance,
		TotalPaid:          b.TotalPaid,
		TotalConsumed:      b.TotalConsumed,
		ClearingResolution: b.ClearingResolution,
	}
}

func toHistoryResponse(entries []engine.HistoryEntry) []*HistoryEntryResponse {
	responses := make([]*HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = &HistoryEntryResponse{
			Time:    e.Time.Format("2006-01-02T15:04:05Z"),
			Change:  e.Change,
			Balance: e.Balance,
			Origin: HistoryOriginResponse{
				Type: string(e.Origin.Type),
				ID:   e.Origin.ID,
			},
		}
	}
	return responses
}

func toPlanResponse(items []engine.SettlementPlanItem) []*SettlementPlanItemResponse {
	responses := make([]*SettlementPlanItemResponse, len(items))
	for i, item := range items {
		responses[i] = &SettlementPlanItemResponse{
			CreditorID: item.CreditorID,
			DebitorID:  item.DebitorID,
			Amount:     item.Amount,
		}
	}
	return responses
}
