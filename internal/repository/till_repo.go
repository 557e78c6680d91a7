package repository

import (
	"context"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashTotals is the aggregate of a till's movement log, grouped by direction.
type CashTotals struct {
	Inflows  decimal.Decimal
	Outflows decimal.Decimal
}

// TillRepository is the data access contract for till sessions and their
// cash movements. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via fakes.
type TillRepository interface {
	CreateTx(tx *gorm.DB, t *model.Till) error
	FindOpen(ctx context.Context) (*model.Till, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Till, error)
	UpdateTx(tx *gorm.DB, t *model.Till) error
	ListClosed(ctx context.Context, page, limit int) ([]model.Till, int64, error)

	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	// SumMovements aggregates the FULL movement log of a till in one query.
	// Balance is never cached — this is the reconciliation contract the
	// close step depends on.
	SumMovements(ctx context.Context, tillID uuid.UUID) (CashTotals, error)
	SumMovementsTx(tx *gorm.DB, tillID uuid.UUID) (CashTotals, error)
	ListMovementsBetween(ctx context.Context, tillID uuid.UUID, from, to time.Time, page, limit int) ([]model.CashMovement, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type tillRepo struct{ db *gorm.DB }

func NewTillRepository(db *gorm.DB) TillRepository { return &tillRepo{db: db} }

func (r *tillRepo) DB() *gorm.DB { return r.db }

func (r *tillRepo) CreateTx(tx *gorm.DB, t *model.Till) error {
	return tx.Create(t).Error
}

func (r *tillRepo) FindOpen(ctx context.Context) (*model.Till, error) {
	var t model.Till
	err := r.db.WithContext(ctx).Where("status = ?", model.TillOpen).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tillRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Till, error) {
	var t model.Till
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tillRepo) UpdateTx(tx *gorm.DB, t *model.Till) error {
	return tx.Save(t).Error
}

func (r *tillRepo) ListClosed(ctx context.Context, page, limit int) ([]model.Till, int64, error) {
	var tills []model.Till
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Till{}).Where("status = ?", model.TillClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("data_fechamento DESC").Offset(offset).Limit(limit).Find(&tills).Error
	return tills, total, err
}

func (r *tillRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *tillRepo) SumMovements(ctx context.Context, tillID uuid.UUID) (CashTotals, error) {
	return sumMovements(r.db.WithContext(ctx), tillID)
}

func (r *tillRepo) SumMovementsTx(tx *gorm.DB, tillID uuid.UUID) (CashTotals, error) {
	return sumMovements(tx, tillID)
}

func sumMovements(db *gorm.DB, tillID uuid.UUID) (CashTotals, error) {
	var row struct {
		Inflows  decimal.Decimal
		Outflows decimal.Decimal
	}
	err := db.Model(&model.CashMovement{}).
		Select(`COALESCE(SUM(valor) FILTER (WHERE tipo = 'entrada'), 0) AS inflows,
			COALESCE(SUM(valor) FILTER (WHERE tipo = 'saida'), 0) AS outflows`).
		Where("caixa_id = ?", tillID).
		Scan(&row).Error
	if err != nil {
		return CashTotals{}, err
	}
	return CashTotals{Inflows: row.Inflows, Outflows: row.Outflows}, nil
}

func (r *tillRepo) ListMovementsBetween(ctx context.Context, tillID uuid.UUID, from, to time.Time, page, limit int) ([]model.CashMovement, int64, error) {
	var movs []model.CashMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashMovement{}).
		Where("caixa_id = ? AND data_hora BETWEEN ? AND ?", tillID, from, to)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("data_hora DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}
