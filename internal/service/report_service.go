package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// periodCacheTTL keeps period summaries hot for dashboards that poll; the
// window is short enough that a just-registered sale shows up within a minute.
const periodCacheTTL = 60 * time.Second

// ReportService serves the read-only aggregations: period summaries over the
// whole ledger and the closing reconciliation sheet of a single till.
type ReportService interface {
	PeriodSummary(ctx context.Context, filter dto.PeriodFilter) (*dto.PeriodSummaryResponse, error)
	TillClosingReport(ctx context.Context, tillID uuid.UUID) (*dto.TillClosingReport, error)
}

type reportService struct {
	repo     repository.ReportRepository
	tillRepo repository.TillRepository
	rdb      *redis.Client
}

func NewReportService(repo repository.ReportRepository, tillRepo repository.TillRepository, rdb *redis.Client) ReportService {
	return &reportService{repo: repo, tillRepo: tillRepo, rdb: rdb}
}

func (s *reportService) PeriodSummary(ctx context.Context, filter dto.PeriodFilter) (*dto.PeriodSummaryResponse, error) {
	from, to := parseDateRange(filter.From, filter.To)
	if filter.TopN < 1 {
		filter.TopN = 5
	}

	cacheKey := fmt.Sprintf("report:period:%s:%s:%d", filter.From, filter.To, filter.TopN)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached dto.PeriodSummaryResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	totals, err := s.repo.PeriodTotals(ctx, from, to)
	if err != nil {
		return nil, persistence("period totals", err)
	}
	byMethod, err := s.repo.ByPaymentMethod(ctx, from, to)
	if err != nil {
		return nil, persistence("payment method breakdown", err)
	}
	topProducts, err := s.repo.TopProducts(ctx, from, to, filter.TopN)
	if err != nil {
		return nil, persistence("top products", err)
	}
	topCustomers, err := s.repo.TopCustomers(ctx, from, to, filter.TopN)
	if err != nil {
		return nil, persistence("top customers", err)
	}

	average := decimal.Zero
	if totals.SaleCount > 0 {
		average = totals.SaleTotal.DivRound(decimal.NewFromInt(totals.SaleCount), 2)
	}

	resp := &dto.PeriodSummaryResponse{
		From:          filter.From,
		To:            filter.To,
		TotalInflows:  totals.TotalInflows,
		TotalOutflows: totals.TotalOutflows,
		Net:           totals.TotalInflows.Sub(totals.TotalOutflows),
		SaleCount:     totals.SaleCount,
		SaleTotal:     totals.SaleTotal,
		AverageSale:   average,
		DiscountTotal: totals.DiscountTotal,
	}
	for _, m := range byMethod {
		resp.ByPaymentMethod = append(resp.ByPaymentMethod, dto.PaymentMethodSummary(m))
	}
	for _, p := range topProducts {
		resp.TopProducts = append(resp.TopProducts, dto.TopProductSummary(p))
	}
	for _, c := range topCustomers {
		resp.TopCustomers = append(resp.TopCustomers, dto.TopCustomerSummary(c))
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, cacheKey, raw, periodCacheTTL)
		}
	}
	return resp, nil
}

// TillClosingReport rebuilds the reconciliation sheet from the movement log.
// For a still-open till the computed balance is the running balance and the
// declared/variance fields stay empty.
func (s *reportService) TillClosingReport(ctx context.Context, tillID uuid.UUID) (*dto.TillClosingReport, error) {
	till, err := s.tillRepo.FindByID(ctx, tillID)
	if err != nil {
		return nil, ErrNoSuchTill
	}

	totals, err := s.tillRepo.SumMovements(ctx, tillID)
	if err != nil {
		return nil, persistence("movement totals", err)
	}
	sales, err := s.repo.TillSaleTotals(ctx, tillID)
	if err != nil {
		return nil, persistence("till sale totals", err)
	}

	report := &dto.TillClosingReport{
		TillID:                 till.ID.String(),
		OpenedAt:               till.OpenedAt.Format(time.RFC3339),
		Operator:               till.Operator,
		Status:                 till.Status,
		OpeningBalance:         till.OpeningBalance,
		TotalInflows:           totals.Inflows,
		TotalOutflows:          totals.Outflows,
		ComputedClosingBalance: totals.Inflows.Sub(totals.Outflows),
		DeclaredClosingBalance: till.DeclaredClosingBalance,
		Variance:               till.Variance,
		SaleCount:              sales.SaleCount,
		SaleTotal:              sales.SaleTotal,
		Note:                   till.Note,
	}
	if till.ClosedAt != nil {
		closed := till.ClosedAt.Format(time.RFC3339)
		report.ClosedAt = &closed
	}
	return report, nil
}
