package tests

import (
	"context"
	"testing"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	totals     repository.PeriodTotals
	byMethod   []repository.PaymentMethodTotal
	products   []repository.TopProduct
	customers  []repository.TopCustomer
	saleTotals map[uuid.UUID]repository.TillSaleTotals
}

var _ repository.ReportRepository = (*fakeReportRepo)(nil)

func (r *fakeReportRepo) PeriodTotals(_ context.Context, _, _ time.Time) (repository.PeriodTotals, error) {
	return r.totals, nil
}

func (r *fakeReportRepo) ByPaymentMethod(_ context.Context, _, _ time.Time) ([]repository.PaymentMethodTotal, error) {
	return r.byMethod, nil
}

func (r *fakeReportRepo) TopProducts(_ context.Context, _, _ time.Time, n int) ([]repository.TopProduct, error) {
	if n < len(r.products) {
		return r.products[:n], nil
	}
	return r.products, nil
}

func (r *fakeReportRepo) TopCustomers(_ context.Context, _, _ time.Time, n int) ([]repository.TopCustomer, error) {
	if n < len(r.customers) {
		return r.customers[:n], nil
	}
	return r.customers, nil
}

func (r *fakeReportRepo) TillSaleTotals(_ context.Context, tillID uuid.UUID) (repository.TillSaleTotals, error) {
	t, ok := r.saleTotals[tillID]
	if !ok {
		return repository.TillSaleTotals{SaleTotal: decimal.Zero}, nil
	}
	return t, nil
}

func TestPeriodSummary_Aggregation(t *testing.T) {
	repo := &fakeReportRepo{
		totals: repository.PeriodTotals{
			TotalInflows:  dec("1250.00"),
			TotalOutflows: dec("180.00"),
			SaleCount:     3,
			SaleTotal:     dec("1000.00"),
			DiscountTotal: dec("35.00"),
		},
		byMethod: []repository.PaymentMethodTotal{
			{PaymentMethod: model.PayCash, SaleCount: 2, Total: dec("600.00")},
			{PaymentMethod: model.PayPix, SaleCount: 1, Total: dec("400.00")},
		},
		products: []repository.TopProduct{
			{ProductID: uuid.NewString(), Name: "Brigadeiro", Quantity: 40, Total: dec("200.00")},
		},
		customers: []repository.TopCustomer{
			{CustomerID: uuid.NewString(), Name: "Padaria Central", SaleCount: 2, Total: dec("700.00")},
		},
	}
	svc := service.NewReportService(repo, newFakeTillRepo(), nil)

	resp, err := svc.PeriodSummary(context.Background(), dto.PeriodFilter{
		From: "2026-08-01", To: "2026-08-31",
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-08-01", resp.From)
	assert.True(t, resp.Net.Equal(dec("1070.00")), "net %s", resp.Net)
	assert.Equal(t, int64(3), resp.SaleCount)
	// 1000 / 3, rounded to cents.
	assert.True(t, resp.AverageSale.Equal(dec("333.33")), "average %s", resp.AverageSale)
	assert.True(t, resp.DiscountTotal.Equal(dec("35.00")))

	require.Len(t, resp.ByPaymentMethod, 2)
	assert.Equal(t, model.PayCash, resp.ByPaymentMethod[0].PaymentMethod)
	require.Len(t, resp.TopProducts, 1)
	assert.Equal(t, "Brigadeiro", resp.TopProducts[0].Name)
	require.Len(t, resp.TopCustomers, 1)
	assert.Equal(t, int64(2), resp.TopCustomers[0].SaleCount)
}

func TestPeriodSummary_EmptyPeriod(t *testing.T) {
	repo := &fakeReportRepo{
		totals: repository.PeriodTotals{
			TotalInflows:  decimal.Zero,
			TotalOutflows: decimal.Zero,
			SaleTotal:     decimal.Zero,
			DiscountTotal: decimal.Zero,
		},
	}
	svc := service.NewReportService(repo, newFakeTillRepo(), nil)

	resp, err := svc.PeriodSummary(context.Background(), dto.PeriodFilter{
		From: "2026-01-01", To: "2026-01-02",
	})
	require.NoError(t, err)
	assert.True(t, resp.AverageSale.IsZero())
	assert.True(t, resp.Net.IsZero())
	assert.Empty(t, resp.ByPaymentMethod)
}

func TestTillClosingReport_FromLedger(t *testing.T) {
	tillRepo := newFakeTillRepo()
	tills := service.NewTillService(tillRepo, nil)
	ledger := service.NewCashLedger(tillRepo)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	tillID := uuid.MustParse(opened.ID)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionOutflow,
		Amount: dec("30.00"), Description: "compra de ingredientes", PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	reportRepo := &fakeReportRepo{
		saleTotals: map[uuid.UUID]repository.TillSaleTotals{
			tillID: {SaleCount: 4, SaleTotal: dec("250.00")},
		},
	}
	svc := service.NewReportService(reportRepo, tillRepo, nil)

	// While the till is open the declared/variance fields stay empty.
	report, err := svc.TillClosingReport(ctx, tillID)
	require.NoError(t, err)
	assert.Equal(t, model.TillOpen, report.Status)
	assert.Nil(t, report.ClosedAt)
	assert.Nil(t, report.DeclaredClosingBalance)
	assert.True(t, report.ComputedClosingBalance.Equal(dec("70.00")))
	assert.Equal(t, int64(4), report.SaleCount)

	_, err = tills.Close(ctx, "maria", dto.CloseTillRequest{
		TillID: opened.ID, DeclaredBalance: dec("68.00"),
	})
	require.NoError(t, err)

	report, err = svc.TillClosingReport(ctx, tillID)
	require.NoError(t, err)
	assert.Equal(t, model.TillClosed, report.Status)
	require.NotNil(t, report.ClosedAt)
	require.NotNil(t, report.DeclaredClosingBalance)
	assert.True(t, report.DeclaredClosingBalance.Equal(dec("68.00")))
	require.NotNil(t, report.Variance)
	assert.True(t, report.Variance.Equal(dec("-2.00")), "variance %s", report.Variance)
	assert.True(t, report.SaleTotal.Equal(dec("250.00")))
}

func TestTillClosingReport_UnknownTill(t *testing.T) {
	svc := service.NewReportService(&fakeReportRepo{}, newFakeTillRepo(), nil)
	_, err := svc.TillClosingReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNoSuchTill)
}
