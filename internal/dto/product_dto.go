package dto

import "github.com/shopspring/decimal"

type ProductFilter struct {
	Name  string `form:"name"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductRequest struct {
	Name        string          `json:"name"         validate:"required,min=2"`
	Description *string         `json:"description"`
	Quantity    int             `json:"quantity"     validate:"min=0"`
	MinQuantity int             `json:"min_quantity" validate:"min=0"`
	CostPrice   decimal.Decimal `json:"cost_price"   validate:"min=0"`
	SalePrice   decimal.Decimal `json:"sale_price"   validate:"min=0"`
	ExpiresAt   *string         `json:"expires_at"   validate:"omitempty,datetime=2006-01-02"`
	Location    *string         `json:"location"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	ExpiresAt   *string         `json:"expires_at"`
	Location    *string         `json:"location"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockAlertResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	// Kind: "low_stock" | "expiring" | "expired"
	Kind string `json:"kind"`
}
