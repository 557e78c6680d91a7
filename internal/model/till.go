package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Till status values.
const (
	TillOpen   = "aberto"
	TillClosed = "fechado"
)

// Cash movement directions. The legacy data used "Entrada"/"Saída"; the
// migration normalizes them to accent-free lowercase.
const (
	DirectionInflow  = "entrada"
	DirectionOutflow = "saida"
)

// Cash movement reference kinds.
const (
	RefSale           = "venda"
	RefManual         = "manual"
	RefOpeningBalance = "saldo_inicial"
)

// Till is one cash-drawer session, bounded by an open/close pair.
// At most one row may have Status = "aberto" at any time — enforced by a
// partial unique index on the table, not by application state.
type Till struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OpenedAt       time.Time       `gorm:"column:data_abertura;not null"`
	ClosedAt       *time.Time      `gorm:"column:data_fechamento"`
	OpeningBalance decimal.Decimal `gorm:"column:saldo_inicial;type:decimal(12,2);not null"`
	// ComputedClosingBalance is derived on close from the movement log:
	// SUM(entradas) - SUM(saidas), with the opening float logged as the
	// first entrada.
	ComputedClosingBalance *decimal.Decimal `gorm:"column:saldo_final_sistema;type:decimal(12,2)"`
	DeclaredClosingBalance *decimal.Decimal `gorm:"column:saldo_final_informado;type:decimal(12,2)"`
	Variance               *decimal.Decimal `gorm:"column:diferenca;type:decimal(12,2)"`
	Operator               string           `gorm:"column:operador;not null"`
	Status                 string           `gorm:"type:varchar(20);not null;default:'aberto'"`
	Note                   *string          `gorm:"column:observacao"`

	Movements []CashMovement `gorm:"foreignKey:TillID"`
}

// TableName preserves the legacy schema name.
func (Till) TableName() string { return "caixas" }

// CashMovement is an immutable event in the cash ledger.
// Movements are NEVER modified or deleted — voids create inverse entries.
type CashMovement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TillID     uuid.UUID       `gorm:"column:caixa_id;type:uuid;index;not null"`
	OccurredAt time.Time       `gorm:"column:data_hora;not null"`
	Direction  string          `gorm:"column:tipo;type:varchar(10);not null"`
	Descr      string          `gorm:"column:descricao;not null"`
	Amount     decimal.Decimal `gorm:"column:valor;type:decimal(12,2);not null"`
	// PaymentMethod is nil for opening-balance entries.
	PaymentMethod *string `gorm:"column:forma_pagamento;type:varchar(20)"`
	// ReferenceID links to the originating Sale or manual operation.
	ReferenceID   *uuid.UUID `gorm:"column:referencia_id;type:uuid"`
	ReferenceKind string     `gorm:"column:tipo_referencia;type:varchar(20);not null"`
	Operator      string     `gorm:"column:operador;not null"`
	Note          *string    `gorm:"column:observacao"`
}

func (CashMovement) TableName() string { return "movimentos_caixa" }
