package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	StockSale        = "venda"
	StockAdjustment  = "ajuste_manual"
	StockVoidRestore = "estorno_anulacao"
)

// StockMovement records every stock change on a product. One row is written
// per sale line, manual adjustment, or void restore — append-only.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"column:produto_id;type:uuid;not null;index"`
	Kind      string    `gorm:"column:tipo;not null"`
	// Delta is positive for stock entering, negative for stock leaving.
	Delta       int        `gorm:"column:quantidade;not null"`
	StockBefore int        `gorm:"column:estoque_anterior;not null"`
	StockAfter  int        `gorm:"column:estoque_novo;not null"`
	Reason      string     `gorm:"column:motivo"`
	ReferenceID *uuid.UUID `gorm:"column:referencia_id;type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string { return "movimentos_estoque" }
