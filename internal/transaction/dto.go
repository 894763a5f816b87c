package transaction

import "time"

// PositionRequest represents one itemized position of a purchase
type PositionRequest struct {
	Name            string            `json:"name" validate:"required,min=1,max=255"`
	Price           float64           `json:"price" validate:"required,gt=0"`
	CommunistShares float64           `json:"communist_shares" validate:"gte=0"`
	Usages          map[int64]float64 `json:"usages"`
}

// CreateTransactionRequest represents the request to create a transaction
type CreateTransactionRequest struct {
	Type                   string             `json:"type" validate:"required,oneof=purchase transfer"`
	Description            string             `json:"description" validate:"required,min=1,max=255"`
	Value                  float64            `json:"value" validate:"required,gt=0"`
	CurrencySymbol         string             `json:"currency_symbol,omitempty"`
	CurrencyConversionRate float64            `json:"currency_conversion_rate,omitempty"`
	CreditorShares         map[int64]float64  `json:"creditor_shares" validate:"required"`
	DebitorShares          map[int64]float64  `json:"debitor_shares" validate:"required"`
	Positions              []*PositionRequest `json:"positions,omitempty"`
	BilledAt               time.Time          `json:"billed_at"`
}

// UpdateTransactionRequest replaces the editable parts of a
// transaction wholesale. Shares and positions are always replaced as a
// unit; partial share edits would leave the stored maps inconsistent.
type UpdateTransactionRequest struct {
	Description    string             `json:"description" validate:"required,min=1,max=255"`
	Value          float64            `json:"value" validate:"required,gt=0"`
	CreditorShares map[int64]float64  `json:"creditor_shares" validate:"required"`
	DebitorShares  map[int64]float64  `json:"debitor_shares" validate:"required"`
	Positions      []*PositionRequest `json:"positions,omitempty"`
	BilledAt       time.Time          `json:"billed_at"`
}

// PositionResponse represents the response for a position
type PositionResponse struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Price           float64           `json:"price"`
	CommunistShares float64           `json:"communist_shares"`
	Usages          map[int64]float64 `json:"usages"`
}

// TransactionResponse represents the response for a transaction
type TransactionResponse struct {
	ID                     int64               `json:"id"`
	Type                   TransactionType     `json:"type"`
	Description            string              `json:"description"`
	Value                  float64             `json:"value"`
	CurrencySymbol         string              `json:"currency_symbol,omitempty"`
	CurrencyConversionRate float64             `json:"currency_conversion_rate,omitempty"`
	CreditorShares         map[int64]float64   `json:"creditor_shares"`
	DebitorShares          map[int64]float64   `json:"debitor_shares"`
	Positions              []*PositionResponse `json:"positions,omitempty"`
	BilledAt               string              `json:"billed_at"`
	CreatedAt              string              `json:"created_at"`
	UpdatedAt              string              `json:"updated_at"`
}

// ToResponse converts a Transaction model to a TransactionResponse DTO
func (t *Transaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:                     t.ID,
		Type:                   t.Type,
		Description:            t.Description,
		Value:                  t.Value,
		CurrencySymbol:         t.CurrencySymbol,
		CurrencyConversionRate: t.CurrencyConversionRate,
		CreditorShares:         t.CreditorShares,
		DebitorShares:          t.DebitorShares,
		BilledAt:               t.BilledAt.Format("2006-01-02T15:04:05Z"),
		CreatedAt:              t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:              t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, p := range t.Positions {
		if p.Deleted {
			continue
		}
		resp.Positions = append(resp.Positions, &PositionResponse{
			ID:              p.ID,
			Name:            p.Name,
			Price:           p.Price,
			CommunistShares: p.CommunistShares,
			Usages:          p.Usages,
		})
	}
	return resp
}
