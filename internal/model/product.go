package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is catalog master data plus the authoritative stock counter.
// Quantity is only ever decremented by the sales engine through a conditional
// update, so it can never go negative.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"column:nome;index;not null"`
	Description *string         `gorm:"column:descricao"`
	Quantity    int             `gorm:"column:quantidade;not null;default:0"`
	MinQuantity int             `gorm:"column:quantidade_minima;not null;default:5"`
	CostPrice   decimal.Decimal `gorm:"column:preco_compra;type:decimal(12,2);not null"`
	SalePrice   decimal.Decimal `gorm:"column:preco_venda;type:decimal(12,2);not null"`
	ExpiresAt   *time.Time      `gorm:"column:data_validade"`
	Location    *string         `gorm:"column:localizacao"`
	CreatedAt   time.Time       `gorm:"column:data_cadastro"`
	UpdatedAt   time.Time
}

func (Product) TableName() string { return "produtos" }
