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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService composes the stock ledger and the cash ledger into one atomic
// register-sale operation: either every write lands — sale, line items,
// stock decrements, stock audit rows, the inflow cash movement — or none do.
type SaleService interface {
	RegisterSale(ctx context.Context, operator string, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	VoidSale(ctx context.Context, operator string, id uuid.UUID, reason string) error
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo      repository.SaleRepository
	tills     TillService
	tillRepo  repository.TillRepository
	stock     StockService
	products  repository.ProductRepository
	customers repository.CustomerRepository
}

func NewSaleService(
	repo repository.SaleRepository,
	tills TillService,
	tillRepo repository.TillRepository,
	stock StockService,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
) SaleService {
	return &saleService{
		repo:      repo,
		tills:     tills,
		tillRepo:  tillRepo,
		stock:     stock,
		products:  products,
		customers: customers,
	}
}

// ── RegisterSale ─────────────────────────────────────────────────────────────
// 1. Validate: open till, non-empty items, customer, discount ≤ subtotal.
// 2. Resolve products and price the sale (pre-flight, outside the tx).
// 3. One transaction: ticket number, sale + items, conditional stock
//    decrements with audit rows, one inflow cash movement for the total.
// Any failure inside the transaction rolls back every prior write.

func (s *saleService) RegisterSale(ctx context.Context, operator string, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}
	if req.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	till, err := s.tills.RequireOpen(ctx)
	if err != nil {
		return nil, err
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, ErrNoSuchCustomer
		}
		ok, err := s.customers.Exists(ctx, cid)
		if err != nil {
			return nil, persistence("customer lookup", err)
		}
		if !ok {
			return nil, ErrNoSuchCustomer
		}
		customerID = &cid
	}

	type resolvedItem struct {
		productID uuid.UUID
		name      string
		price     decimal.Decimal
		quantity  int
		subtotal  decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, ErrNoSuchProduct
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, ErrNoSuchProduct
		}
		lineSubtotal := p.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			price:     p.SalePrice,
			quantity:  item.Quantity,
			subtotal:  lineSubtotal,
		})
	}

	if req.Discount.GreaterThan(subtotal) {
		return nil, ErrInvalidDiscount
	}
	total := subtotal.Sub(req.Discount)

	installments := req.Installments
	if installments < 1 {
		installments = 1
	}
	if req.PaymentMethod != model.PayCredit {
		installments = 1
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			TicketNumber:  ticket,
			OccurredAt:    time.Now(),
			TillID:        till.ID,
			CustomerID:    customerID,
			Total:         total,
			Discount:      req.Discount,
			PaymentMethod: req.PaymentMethod,
			Installments:  installments,
			Note:          req.Note,
			Status:        model.SaleCompleted,
			Operator:      operator,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleLineItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.price,
				Subtotal:  r.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		reason := fmt.Sprintf("Venda #%d", ticket)
		for _, r := range resolved {
			if err := s.stock.DecrementTx(tx, r.productID, r.quantity, reason, &sale.ID); err != nil {
				return err
			}
		}

		method := req.PaymentMethod
		mov := &model.CashMovement{
			TillID:        till.ID,
			OccurredAt:    sale.OccurredAt,
			Direction:     model.DirectionInflow,
			Descr:         reason,
			Amount:        total,
			PaymentMethod: &method,
			ReferenceID:   &sale.ID,
			ReferenceKind: model.RefSale,
			Operator:      operator,
		}
		return s.tillRepo.CreateMovementTx(tx, mov)
	})
	if txErr != nil {
		var insufficient *InsufficientStockError
		if errors.As(txErr, &insufficient) {
			return nil, insufficient
		}
		if errors.Is(txErr, ErrNoSuchProduct) {
			return nil, ErrNoSuchProduct
		}
		return nil, persistence("register sale", txErr)
	}

	resp := saleToResponse(&sale, subtotal)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── VoidSale ─────────────────────────────────────────────────────────────────
// Restores stock for every line item, writes the inverse cash movement, and
// marks the sale voided. Only allowed while the owning till is still open —
// a closed till is reconciled and its ledger is final.

func (s *saleService) VoidSale(ctx context.Context, operator string, id uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNoSuchSale
	}
	if sale.Status == model.SaleVoided {
		return ErrSaleVoided
	}

	till, err := s.tillRepo.FindByID(ctx, sale.TillID)
	if err != nil {
		return ErrNoSuchTill
	}
	if till.Status != model.TillOpen {
		return ErrTillNotOpen
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		descr := fmt.Sprintf("Estorno venda #%d — %s", sale.TicketNumber, reason)
		for _, item := range sale.Items {
			if err := s.stock.RestoreTx(tx, item.ProductID, item.Quantity, descr, &sale.ID); err != nil {
				return err
			}
		}

		method := sale.PaymentMethod
		mov := &model.CashMovement{
			TillID:        sale.TillID,
			OccurredAt:    time.Now(),
			Direction:     model.DirectionOutflow,
			Descr:         descr,
			Amount:        sale.Total,
			PaymentMethod: &method,
			ReferenceID:   &sale.ID,
			ReferenceKind: model.RefSale,
			Operator:      operator,
		}
		if err := s.tillRepo.CreateMovementTx(tx, mov); err != nil {
			return err
		}

		return s.repo.UpdateStatusTx(tx, id, model.SaleVoided)
	})
	if txErr != nil {
		return persistence("void sale", txErr)
	}
	return nil
}

// ── List ─────────────────────────────────────────────────────────────────────

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = model.SaleCompleted
	}

	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistence("sale list", err)
	}

	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i], sales[i].Total.Add(sales[i].Discount)))
	}
	return &dto.SaleListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(v *model.Sale, subtotal decimal.Decimal) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:            v.ID.String(),
		TicketNumber:  v.TicketNumber,
		Items:         items,
		Subtotal:      subtotal,
		Discount:      v.Discount,
		Total:         v.Total,
		PaymentMethod: v.PaymentMethod,
		Installments:  v.Installments,
		Status:        v.Status,
		Operator:      v.Operator,
		CreatedAt:     v.OccurredAt.Format(time.RFC3339),
	}
}
