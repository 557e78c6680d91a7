package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenTillRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type CloseTillRequest struct {
	TillID          string          `json:"till_id"          validate:"required,uuid"`
	DeclaredBalance decimal.Decimal `json:"declared_balance" validate:"min=0"`
	Note            *string         `json:"note"`
}

type ManualMovementRequest struct {
	TillID        string          `json:"till_id"        validate:"required,uuid"`
	Direction     string          `json:"direction"      validate:"required,oneof=entrada saida"`
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	Description   string          `json:"description"    validate:"required,min=3"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=dinheiro credito debito pix boleto"`
	Note          *string         `json:"note"`
}

type MovementRangeFilter struct {
	From  string `form:"from"  validate:"omitempty,datetime=2006-01-02"`
	To    string `form:"to"    validate:"omitempty,datetime=2006-01-02"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TillResponse struct {
	ID                     string           `json:"id"`
	OpenedAt               string           `json:"opened_at"`
	ClosedAt               *string          `json:"closed_at"`
	OpeningBalance         decimal.Decimal  `json:"opening_balance"`
	ComputedClosingBalance *decimal.Decimal `json:"computed_closing_balance"`
	DeclaredClosingBalance *decimal.Decimal `json:"declared_closing_balance"`
	Variance               *decimal.Decimal `json:"variance"`
	Operator               string           `json:"operator"`
	Status                 string           `json:"status"`
	Note                   *string          `json:"note"`
}

// ClosedTillSummary is returned by the close operation: the reconciliation
// of the declared count against the ledger-computed balance.
type ClosedTillSummary struct {
	TillID                 string          `json:"till_id"`
	OpenedAt               string          `json:"opened_at"`
	ClosedAt               string          `json:"closed_at"`
	OpeningBalance         decimal.Decimal `json:"opening_balance"`
	ComputedClosingBalance decimal.Decimal `json:"computed_closing_balance"`
	DeclaredClosingBalance decimal.Decimal `json:"declared_closing_balance"`
	Variance               decimal.Decimal `json:"variance"`
	TotalInflows           decimal.Decimal `json:"total_inflows"`
	TotalOutflows          decimal.Decimal `json:"total_outflows"`
	Operator               string          `json:"operator"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	TillID        string          `json:"till_id"`
	OccurredAt    string          `json:"occurred_at"`
	Direction     string          `json:"direction"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod *string         `json:"payment_method"`
	ReferenceID   *string         `json:"reference_id"`
	ReferenceKind string          `json:"reference_kind"`
	Operator      string          `json:"operator"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type BalanceResponse struct {
	TillID  string          `json:"till_id"`
	Balance decimal.Decimal `json:"balance"`
}
