package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const expiryAlertWindow = 30 * 24 * time.Hour

// StockService guards the per-product quantity counter. Decrements happen
// through a conditional update so the counter can never go negative, even
// when two sales of the same product commit concurrently.
type StockService interface {
	CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	// DecrementTx runs inside a sale transaction and writes the audit row.
	DecrementTx(tx *gorm.DB, productID uuid.UUID, qty int, reason string, refID *uuid.UUID) error
	// RestoreTx re-enters stock on void, also inside the caller's transaction.
	RestoreTx(tx *gorm.DB, productID uuid.UUID, qty int, reason string, refID *uuid.UUID) error
	Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string) error
	Alerts(ctx context.Context) ([]dto.StockAlertResponse, error)
	Movements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockService(products repository.ProductRepository, movements repository.StockMovementRepository) StockService {
	return &stockService{products: products, movements: movements}
}

func (s *stockService) CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNoSuchProduct
		}
		return false, persistence("stock check", err)
	}
	return p.Quantity >= qty, nil
}

func (s *stockService) DecrementTx(tx *gorm.DB, productID uuid.UUID, qty int, reason string, refID *uuid.UUID) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	before, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchProduct
		}
		return err
	}

	rows, err := s.products.DecrementStockTx(tx, productID, qty)
	if err != nil {
		return err
	}
	if rows == 0 {
		// The guard failed: another transaction took the units between our
		// read and the update, or there were never enough.
		return &InsufficientStockError{
			ProductID: productID,
			Name:      before.Name,
			Available: before.Quantity,
			Requested: qty,
		}
	}

	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Kind:        model.StockSale,
		Delta:       -qty,
		StockBefore: before.Quantity,
		StockAfter:  before.Quantity - qty,
		Reason:      reason,
		ReferenceID: refID,
	})
}

func (s *stockService) RestoreTx(tx *gorm.DB, productID uuid.UUID, qty int, reason string, refID *uuid.UUID) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	before, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchProduct
		}
		return err
	}

	if err := s.products.AdjustStockTx(tx, productID, qty); err != nil {
		return err
	}

	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Kind:        model.StockVoidRestore,
		Delta:       qty,
		StockBefore: before.Quantity,
		StockAfter:  before.Quantity + qty,
		Reason:      reason,
		ReferenceID: refID,
	})
}

func (s *stockService) Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string) error {
	if delta == 0 {
		return ErrInvalidAmount
	}

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		before, err := s.products.FindByIDTx(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSuchProduct
			}
			return err
		}
		if delta < 0 {
			rows, err := s.products.DecrementStockTx(tx, productID, -delta)
			if err != nil {
				return err
			}
			if rows == 0 {
				return &InsufficientStockError{
					ProductID: productID,
					Name:      before.Name,
					Available: before.Quantity,
					Requested: -delta,
				}
			}
		} else {
			if err := s.products.AdjustStockTx(tx, productID, delta); err != nil {
				return err
			}
		}
		return s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   productID,
			Kind:        model.StockAdjustment,
			Delta:       delta,
			StockBefore: before.Quantity,
			StockAfter:  before.Quantity + delta,
			Reason:      reason,
		})
	})
	if txErr != nil {
		var insufficient *InsufficientStockError
		if errors.Is(txErr, ErrNoSuchProduct) || errors.As(txErr, &insufficient) {
			return txErr
		}
		return persistence("stock adjust", txErr)
	}
	return nil
}

// Alerts merges low-stock and expiry warnings, mirroring the notification
// checks the back office runs at startup.
func (s *stockService) Alerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	low, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, persistence("stock alerts", err)
	}
	expiring, err := s.products.ListExpiring(ctx, expiryAlertWindow)
	if err != nil {
		return nil, persistence("stock alerts", err)
	}

	alerts := make([]dto.StockAlertResponse, 0, len(low)+len(expiring))
	for i := range low {
		alerts = append(alerts, dto.StockAlertResponse{
			ProductID: low[i].ID.String(),
			Name:      low[i].Name,
			Quantity:  low[i].Quantity,
			Kind:      "low_stock",
		})
	}
	now := time.Now()
	for i := range expiring {
		kind := "expiring"
		if expiring[i].ExpiresAt != nil && expiring[i].ExpiresAt.Before(now) {
			kind = "expired"
		}
		alerts = append(alerts, dto.StockAlertResponse{
			ProductID: expiring[i].ID.String(),
			Name:      expiring[i].Name,
			Quantity:  expiring[i].Quantity,
			Kind:      kind,
		})
	}
	return alerts, nil
}

func (s *stockService) Movements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	movs, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, 0, persistence(fmt.Sprintf("stock movements (kind=%s)", filter.Kind), err)
	}
	return movs, total, nil
}
