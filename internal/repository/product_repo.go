package repository

import (
	"context"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListExpiring(ctx context.Context, within time.Duration) ([]model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)

	// DecrementStockTx conditionally decrements stock inside a sale
	// transaction. Returns the rows affected: 0 means the product either
	// does not exist or had fewer than qty units — the caller decides which.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error)
	// AdjustStockTx applies a signed delta without a sufficiency guard
	// (manual corrections, void restores).
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Name != "" {
		// Parameterized ILIKE — the legacy app interpolated this filter
		// straight into the SQL string.
		q = q.Where("nome ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nome ASC").Offset(offset).Limit(filter.Limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) ListExpiring(ctx context.Context, within time.Duration) ([]model.Product, error) {
	var products []model.Product
	cutoff := time.Now().Add(within)
	err := r.db.WithContext(ctx).
		Where("data_validade IS NOT NULL AND data_validade <= ?", cutoff).
		Order("data_validade ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("quantidade <= quantidade_minima").
		Order("quantidade ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	// The WHERE guard makes the decrement race-free under concurrent sales:
	// two transactions cannot both pass the quantidade >= qty check and
	// drive the counter negative.
	res := tx.Model(&model.Product{}).
		Where("id = ? AND quantidade >= ?", id, qty).
		Update("quantidade", gorm.Expr("quantidade - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantidade", gorm.Expr("quantidade + ?", delta)).Error
}
