package tests

import (
	"context"
	"sort"
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
	"gorm.io/gorm"
)

// ── Full in-memory TillRepository ────────────────────────────────────────────

type fakeTillRepo struct {
	tills     map[uuid.UUID]*model.Till
	movements []model.CashMovement
}

var _ repository.TillRepository = (*fakeTillRepo)(nil)

func newFakeTillRepo() *fakeTillRepo {
	return &fakeTillRepo{tills: make(map[uuid.UUID]*model.Till)}
}

func (r *fakeTillRepo) DB() *gorm.DB { return nil }

func (r *fakeTillRepo) CreateTx(_ *gorm.DB, t *model.Till) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	r.tills[t.ID] = &cp
	return nil
}

func (r *fakeTillRepo) FindOpen(_ context.Context) (*model.Till, error) {
	for _, t := range r.tills {
		if t.Status == model.TillOpen {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Till, error) {
	t, ok := r.tills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTillRepo) UpdateTx(_ *gorm.DB, t *model.Till) error {
	cp := *t
	r.tills[t.ID] = &cp
	return nil
}

func (r *fakeTillRepo) ListClosed(_ context.Context, page, limit int) ([]model.Till, int64, error) {
	var closed []model.Till
	for _, t := range r.tills {
		if t.Status == model.TillClosed {
			closed = append(closed, *t)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].ClosedAt.After(*closed[j].ClosedAt)
	})
	total := int64(len(closed))
	start := (page - 1) * limit
	if start > len(closed) {
		start = len(closed)
	}
	end := start + limit
	if end > len(closed) {
		end = len(closed)
	}
	return closed[start:end], total, nil
}

func (r *fakeTillRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeTillRepo) sum(tillID uuid.UUID) repository.CashTotals {
	totals := repository.CashTotals{Inflows: decimal.Zero, Outflows: decimal.Zero}
	for _, m := range r.movements {
		if m.TillID != tillID {
			continue
		}
		if m.Direction == model.DirectionInflow {
			totals.Inflows = totals.Inflows.Add(m.Amount)
		} else {
			totals.Outflows = totals.Outflows.Add(m.Amount)
		}
	}
	return totals
}

func (r *fakeTillRepo) SumMovements(_ context.Context, tillID uuid.UUID) (repository.CashTotals, error) {
	return r.sum(tillID), nil
}

func (r *fakeTillRepo) SumMovementsTx(_ *gorm.DB, tillID uuid.UUID) (repository.CashTotals, error) {
	return r.sum(tillID), nil
}

func (r *fakeTillRepo) ListMovementsBetween(_ context.Context, tillID uuid.UUID, from, to time.Time, page, limit int) ([]model.CashMovement, int64, error) {
	var movs []model.CashMovement
	for _, m := range r.movements {
		if m.TillID == tillID && !m.OccurredAt.Before(from) && !m.OccurredAt.After(to) {
			movs = append(movs, m)
		}
	}
	sort.Slice(movs, func(i, j int) bool { return movs[i].OccurredAt.After(movs[j].OccurredAt) })
	total := int64(len(movs))
	if limit < 1 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > len(movs) {
		start = len(movs)
	}
	end := start + limit
	if end > len(movs) {
		end = len(movs)
	}
	return movs[start:end], total, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Open ─────────────────────────────────────────────────────────────────────

func TestOpenTill_RecordsOpeningBalanceMovement(t *testing.T) {
	repo := newFakeTillRepo()
	svc := service.NewTillService(repo, nil)

	resp, err := svc.Open(context.Background(), "maria", dto.OpenTillRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	assert.Equal(t, model.TillOpen, resp.Status)
	assert.True(t, resp.OpeningBalance.Equal(dec("100.00")))

	require.Len(t, repo.movements, 1)
	mov := repo.movements[0]
	assert.Equal(t, model.DirectionInflow, mov.Direction)
	assert.Equal(t, "Saldo inicial", mov.Descr)
	assert.Equal(t, model.RefOpeningBalance, mov.ReferenceKind)
	assert.True(t, mov.Amount.Equal(dec("100.00")))
}

func TestOpenTill_ZeroBalanceSkipsMovement(t *testing.T) {
	repo := newFakeTillRepo()
	svc := service.NewTillService(repo, nil)

	_, err := svc.Open(context.Background(), "maria", dto.OpenTillRequest{OpeningBalance: decimal.Zero})
	require.NoError(t, err)
	assert.Empty(t, repo.movements)
}

func TestOpenTill_RejectsSecondOpen(t *testing.T) {
	repo := newFakeTillRepo()
	svc := service.NewTillService(repo, nil)

	_, err := svc.Open(context.Background(), "maria", dto.OpenTillRequest{OpeningBalance: dec("50.00")})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), "joao", dto.OpenTillRequest{OpeningBalance: dec("80.00")})
	assert.ErrorIs(t, err, service.ErrTillAlreadyOpen)
}

func TestOpenTill_RejectsNegativeBalance(t *testing.T) {
	repo := newFakeTillRepo()
	svc := service.NewTillService(repo, nil)

	_, err := svc.Open(context.Background(), "maria", dto.OpenTillRequest{OpeningBalance: dec("-1.00")})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

// ── Close ────────────────────────────────────────────────────────────────────

func TestCloseTill_RoundTrip(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ledger := service.NewCashLedger(repo)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionInflow,
		Amount: dec("50.00"), Description: "troco extra", PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionOutflow,
		Amount: dec("20.00"), Description: "retirada para sangria", PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	summary, err := tills.Close(ctx, "maria", dto.CloseTillRequest{
		TillID: opened.ID, DeclaredBalance: dec("130.00"),
	})
	require.NoError(t, err)

	assert.True(t, summary.ComputedClosingBalance.Equal(dec("130.00")),
		"computed %s", summary.ComputedClosingBalance)
	assert.True(t, summary.Variance.IsZero(), "variance %s", summary.Variance)
	// Inflows include the opening float, which was logged as a movement.
	assert.True(t, summary.TotalInflows.Equal(dec("150.00")))
	assert.True(t, summary.TotalOutflows.Equal(dec("20.00")))
}

func TestCloseTill_ReportsShortfall(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: decimal.Zero})
	require.NoError(t, err)

	summary, err := tills.Close(ctx, "maria", dto.CloseTillRequest{
		TillID: opened.ID, DeclaredBalance: dec("5.00"),
	})
	require.NoError(t, err)
	assert.True(t, summary.Variance.Equal(dec("5.00")), "variance %s", summary.Variance)
}

func TestCloseTill_UnknownAndAlreadyClosed(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ctx := context.Background()

	_, err := tills.Close(ctx, "maria", dto.CloseTillRequest{
		TillID: uuid.NewString(), DeclaredBalance: decimal.Zero,
	})
	assert.ErrorIs(t, err, service.ErrNoSuchTill)

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: decimal.Zero})
	require.NoError(t, err)
	_, err = tills.Close(ctx, "maria", dto.CloseTillRequest{TillID: opened.ID, DeclaredBalance: decimal.Zero})
	require.NoError(t, err)

	_, err = tills.Close(ctx, "maria", dto.CloseTillRequest{TillID: opened.ID, DeclaredBalance: decimal.Zero})
	assert.ErrorIs(t, err, service.ErrTillNotOpen)
}

func TestCurrentOpen_NilWhenNoneOpen(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)

	resp, err := tills.CurrentOpen(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp)
}

// ── Cash ledger ──────────────────────────────────────────────────────────────

func TestBalance_RecomputedFromMovementLog(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ledger := service.NewCashLedger(repo)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	tillID := uuid.MustParse(opened.ID)

	for _, amount := range []string{"10.00", "25.50"} {
		_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
			TillID: opened.ID, Direction: model.DirectionInflow,
			Amount: dec(amount), Description: "reforço de caixa", PaymentMethod: model.PayCash,
		})
		require.NoError(t, err)
	}
	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionOutflow,
		Amount: dec("5.50"), Description: "compra de embalagens", PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	balance, err := ledger.Balance(ctx, tillID)
	require.NoError(t, err)
	// 100 opening + 10 + 25.50 - 5.50, reconstructed purely from the log.
	assert.True(t, balance.Equal(dec("130.00")), "balance %s", balance)
}

func TestRecordMovement_Validation(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ledger := service.NewCashLedger(repo)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: decimal.Zero})
	require.NoError(t, err)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionInflow,
		Amount: decimal.Zero, Description: "nada", PaymentMethod: model.PayCash,
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: uuid.NewString(), Direction: model.DirectionInflow,
		Amount: dec("1.00"), Description: "caixa fantasma", PaymentMethod: model.PayCash,
	})
	assert.ErrorIs(t, err, service.ErrNoSuchTill)

	_, err = tills.Close(ctx, "maria", dto.CloseTillRequest{TillID: opened.ID, DeclaredBalance: decimal.Zero})
	require.NoError(t, err)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionInflow,
		Amount: dec("1.00"), Description: "tarde demais", PaymentMethod: model.PayCash,
	})
	assert.ErrorIs(t, err, service.ErrTillNotOpen)
}

func TestMovementsBetween_NewestFirst(t *testing.T) {
	repo := newFakeTillRepo()
	tills := service.NewTillService(repo, nil)
	ledger := service.NewCashLedger(repo)
	ctx := context.Background()

	opened, err := tills.Open(ctx, "maria", dto.OpenTillRequest{OpeningBalance: dec("10.00")})
	require.NoError(t, err)
	tillID := uuid.MustParse(opened.ID)

	// Backdate the opening movement so ordering is deterministic.
	repo.movements[0].OccurredAt = time.Now().Add(-time.Hour)

	_, err = ledger.Record(ctx, "maria", dto.ManualMovementRequest{
		TillID: opened.ID, Direction: model.DirectionInflow,
		Amount: dec("1.00"), Description: "mais recente", PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	list, err := ledger.MovementsBetween(ctx, tillID, dto.MovementRangeFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "mais recente", list.Data[0].Description)
	assert.Equal(t, "Saldo inicial", list.Data[1].Description)
}
