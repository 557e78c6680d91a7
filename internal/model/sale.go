package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale status values.
const (
	SaleCompleted = "concluida"
	SaleVoided    = "anulada"
)

// Payment methods accepted at the register.
const (
	PayCash   = "dinheiro"
	PayCredit = "credito"
	PayDebit  = "debito"
	PayPix    = "pix"
	PayBoleto = "boleto"
)

// Sale is a completed point-of-sale transaction. It is created atomically
// with its line items and exactly one inflow CashMovement.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber  int             `gorm:"column:numero_ticket;uniqueIndex;not null"`
	OccurredAt    time.Time       `gorm:"column:data_hora;not null;index"`
	TillID        uuid.UUID       `gorm:"column:caixa_id;type:uuid;index;not null"`
	CustomerID    *uuid.UUID      `gorm:"column:cliente_id;type:uuid;index"`
	Total         decimal.Decimal `gorm:"column:valor_total;type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"column:desconto;type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"column:forma_pagamento;type:varchar(20);not null"`
	Installments  int             `gorm:"column:parcelas;not null;default:1"`
	Note          *string         `gorm:"column:observacao"`
	Status        string          `gorm:"type:varchar(20);not null;default:'concluida'"`
	Operator      string          `gorm:"column:operador;not null"`

	Items    []SaleLineItem `gorm:"foreignKey:SaleID"`
	Customer *Customer      `gorm:"foreignKey:CustomerID"`
}

func (Sale) TableName() string { return "vendas" }

// SaleLineItem is one product line inside a Sale.
// Subtotal is always Quantity × UnitPrice, fixed at sale time.
type SaleLineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"column:venda_id;type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"column:produto_id;type:uuid;index;not null"`
	Quantity  int             `gorm:"column:quantidade;not null"`
	UnitPrice decimal.Decimal `gorm:"column:preco_unitario;type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (SaleLineItem) TableName() string { return "itens_venda" }
