package dto

import "github.com/shopspring/decimal"

type PeriodFilter struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to"   validate:"required,datetime=2006-01-02"`
	TopN int    `form:"top_n,default=5" validate:"min=1,max=50"`
}

type PaymentMethodSummary struct {
	PaymentMethod string          `json:"payment_method"`
	SaleCount     int64           `json:"sale_count"`
	Total         decimal.Decimal `json:"total"`
}

type TopProductSummary struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type TopCustomerSummary struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	SaleCount  int64           `json:"sale_count"`
	Total      decimal.Decimal `json:"total"`
}

// TillClosingReport is the reconciliation sheet of one closed till session.
// It backs both the /till/:id/report endpoint and the PDF worker.
type TillClosingReport struct {
	TillID                 string           `json:"till_id"`
	OpenedAt               string           `json:"opened_at"`
	ClosedAt               *string          `json:"closed_at,omitempty"`
	Operator               string           `json:"operator"`
	Status                 string           `json:"status"`
	OpeningBalance         decimal.Decimal  `json:"opening_balance"`
	TotalInflows           decimal.Decimal  `json:"total_inflows"`
	TotalOutflows          decimal.Decimal  `json:"total_outflows"`
	ComputedClosingBalance decimal.Decimal  `json:"computed_closing_balance"`
	DeclaredClosingBalance *decimal.Decimal `json:"declared_closing_balance,omitempty"`
	Variance               *decimal.Decimal `json:"variance,omitempty"`
	SaleCount              int64            `json:"sale_count"`
	SaleTotal              decimal.Decimal  `json:"sale_total"`
	Note                   *string          `json:"note,omitempty"`
}

// PeriodSummaryResponse is the full read-only aggregation for [from, to].
type PeriodSummaryResponse struct {
	From            string                 `json:"from"`
	To              string                 `json:"to"`
	TotalInflows    decimal.Decimal        `json:"total_inflows"`
	TotalOutflows   decimal.Decimal        `json:"total_outflows"`
	Net             decimal.Decimal        `json:"net"`
	SaleCount       int64                  `json:"sale_count"`
	SaleTotal       decimal.Decimal        `json:"sale_total"`
	AverageSale     decimal.Decimal        `json:"average_sale"`
	DiscountTotal   decimal.Decimal        `json:"discount_total"`
	ByPaymentMethod []PaymentMethodSummary `json:"by_payment_method"`
	TopProducts     []TopProductSummary    `json:"top_products"`
	TopCustomers    []TopCustomerSummary   `json:"top_customers"`
}
