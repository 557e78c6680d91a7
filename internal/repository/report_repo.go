package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PeriodTotals carries the movement and sale aggregates of a period.
type PeriodTotals struct {
	TotalInflows  decimal.Decimal
	TotalOutflows decimal.Decimal
	SaleCount     int64
	SaleTotal     decimal.Decimal
	DiscountTotal decimal.Decimal
}

// PaymentMethodTotal is one row of the by-payment-method breakdown.
type PaymentMethodTotal struct {
	PaymentMethod string
	SaleCount     int64
	Total         decimal.Decimal
}

// TopProduct is one row of the best-sellers ranking.
type TopProduct struct {
	ProductID string
	Name      string
	Quantity  int64
	Total     decimal.Decimal
}

// TopCustomer is one row of the best-customers ranking.
type TopCustomer struct {
	CustomerID string
	Name       string
	SaleCount  int64
	Total      decimal.Decimal
}

// TillSaleTotals carries the completed-sale aggregates of one till session.
type TillSaleTotals struct {
	SaleCount int64
	SaleTotal decimal.Decimal
}

// ReportRepository runs the read-only aggregation queries behind period
// summaries. Every query is a plain SELECT — no locks taken, safe to run
// concurrently with writers under the default read-committed isolation.
type ReportRepository interface {
	PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error)
	ByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error)
	TopProducts(ctx context.Context, from, to time.Time, n int) ([]TopProduct, error)
	TopCustomers(ctx context.Context, from, to time.Time, n int) ([]TopCustomer, error)
	TillSaleTotals(ctx context.Context, tillID uuid.UUID) (TillSaleTotals, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error) {
	var t PeriodTotals

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(valor) FILTER (WHERE tipo = 'entrada'), 0) AS total_inflows,
			COALESCE(SUM(valor) FILTER (WHERE tipo = 'saida'), 0)   AS total_outflows
		FROM movimentos_caixa
		WHERE data_hora BETWEEN ? AND ?`, from, to).Scan(&t).Error
	if err != nil {
		return PeriodTotals{}, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                       AS sale_count,
			COALESCE(SUM(valor_total), 0)  AS sale_total,
			COALESCE(SUM(desconto), 0)     AS discount_total
		FROM vendas
		WHERE status = 'concluida' AND data_hora BETWEEN ? AND ?`, from, to).Scan(&t).Error
	return t, err
}

func (r *reportRepo) ByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error) {
	var rows []PaymentMethodTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT forma_pagamento AS payment_method,
		       COUNT(*)                      AS sale_count,
		       COALESCE(SUM(valor_total), 0) AS total
		FROM vendas
		WHERE status = 'concluida' AND data_hora BETWEEN ? AND ?
		GROUP BY forma_pagamento
		ORDER BY total DESC`, from, to).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, n int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS product_id, p.nome AS name,
		       SUM(i.quantidade) AS quantity,
		       COALESCE(SUM(i.subtotal), 0) AS total
		FROM itens_venda i
		JOIN vendas v ON v.id = i.venda_id
		JOIN produtos p ON p.id = i.produto_id
		WHERE v.status = 'concluida' AND v.data_hora BETWEEN ? AND ?
		GROUP BY p.id, p.nome
		ORDER BY quantity DESC
		LIMIT ?`, from, to, n).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TillSaleTotals(ctx context.Context, tillID uuid.UUID) (TillSaleTotals, error) {
	var t TillSaleTotals
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                      AS sale_count,
		       COALESCE(SUM(valor_total), 0) AS sale_total
		FROM vendas
		WHERE caixa_id = ? AND status = 'concluida'`, tillID).Scan(&t).Error
	return t, err
}

func (r *reportRepo) TopCustomers(ctx context.Context, from, to time.Time, n int) ([]TopCustomer, error) {
	var rows []TopCustomer
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS customer_id, c.nome AS name,
		       COUNT(*) AS sale_count,
		       COALESCE(SUM(v.valor_total), 0) AS total
		FROM vendas v
		JOIN clientes c ON c.id = v.cliente_id
		WHERE v.status = 'concluida' AND v.data_hora BETWEEN ? AND ?
		GROUP BY c.id, c.nome
		ORDER BY total DESC
		LIMIT ?`, from, to, n).Scan(&rows).Error
	return rows, err
}
