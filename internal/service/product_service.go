package service

import (
	"context"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"

	"github.com/google/uuid"
)

// ProductService is catalog CRUD. Stock changes never go through here — the
// sales engine and the stock ledger own the quantity column.
type ProductService interface {
	Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		Location:    req.Location,
	}
	if req.ExpiresAt != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err == nil {
			p.ExpiresAt = &t
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, persistence("product create", err)
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNoSuchProduct
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistence("product list", err)
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNoSuchProduct
	}
	p.Name = req.Name
	p.Description = req.Description
	p.MinQuantity = req.MinQuantity
	p.CostPrice = req.CostPrice
	p.SalePrice = req.SalePrice
	p.Location = req.Location
	if req.ExpiresAt != nil {
		if t, err := time.Parse("2006-01-02", *req.ExpiresAt); err == nil {
			p.ExpiresAt = &t
		}
	} else {
		p.ExpiresAt = nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistence("product update", err)
	}
	return productToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNoSuchProduct
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return persistence("product delete", err)
	}
	return nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		MinQuantity: p.MinQuantity,
		CostPrice:   p.CostPrice,
		SalePrice:   p.SalePrice,
		Location:    p.Location,
	}
	if p.ExpiresAt != nil {
		d := p.ExpiresAt.Format("2006-01-02")
		resp.ExpiresAt = &d
	}
	return resp
}
