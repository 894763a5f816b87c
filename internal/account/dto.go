package account

// CreateAccountRequest represents the request to create an account
type CreateAccountRequest struct {
	Name           string            `json:"name" validate:"required,min=1,max=255"`
	Description    string            `json:"description,omitempty"`
	Type           string            `json:"type" validate:"required,oneof=personal clearing"`
	OwningUserID   *int64            `json:"owning_user_id,omitempty"`
	ClearingShares map[int64]float64 `json:"clearing_shares,omitempty"`
}

// UpdateAccountRequest represents the request to update an account.
// Nil fields are left unchanged; a non-nil ClearingShares map replaces
// the stored shares wholesale.
type UpdateAccountRequest struct {
	Name           *string            `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string            `json:"description,omitempty"`
	OwningUserID   *int64             `json:"owning_user_id,omitempty"`
	ClearingShares *map[int64]float64 `json:"clearing_shares,omitempty"`
}

// AccountResponse represents the response for an account
type AccountResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Type           AccountType       `json:"type"`
	OwningUserID   *int64            `json:"owning_user_id,omitempty"`
	ClearingShares map[int64]float64 `json:"clearing_shares,omitempty"`
	Deleted        bool              `json:"deleted"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

// ToResponse converts an Account model to an AccountResponse DTO
func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Type:           a.Type,
		OwningUserID:   a.OwningUserID,
		ClearingShares: a.ClearingShares,
		Deleted:        a.Deleted,
		CreatedAt:      a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      a.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
