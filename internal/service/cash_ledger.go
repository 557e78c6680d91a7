package service

import (
	"context"
	"errors"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashLedger is the append-only movement log of a till. Entries are never
// mutated or deleted; the balance is recomputed from the full log on every
// read so it always matches what the close step will reconcile against.
type CashLedger interface {
	Record(ctx context.Context, operator string, req dto.ManualMovementRequest) (*dto.MovementResponse, error)
	Balance(ctx context.Context, tillID uuid.UUID) (decimal.Decimal, error)
	MovementsBetween(ctx context.Context, tillID uuid.UUID, filter dto.MovementRangeFilter) (*dto.MovementListResponse, error)
}

type cashLedger struct {
	repo repository.TillRepository
}

func NewCashLedger(repo repository.TillRepository) CashLedger {
	return &cashLedger{repo: repo}
}

func (l *cashLedger) Record(ctx context.Context, operator string, req dto.ManualMovementRequest) (*dto.MovementResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tillID, err := uuid.Parse(req.TillID)
	if err != nil {
		return nil, ErrNoSuchTill
	}
	till, err := l.repo.FindByID(ctx, tillID)
	if err != nil {
		return nil, ErrNoSuchTill
	}
	if till.Status != model.TillOpen {
		return nil, ErrTillNotOpen
	}

	method := req.PaymentMethod
	mov := &model.CashMovement{
		TillID:        tillID,
		OccurredAt:    time.Now(),
		Direction:     req.Direction,
		Descr:         req.Description,
		Amount:        req.Amount,
		PaymentMethod: &method,
		ReferenceKind: model.RefManual,
		Operator:      operator,
		Note:          req.Note,
	}

	txErr := runTx(ctx, l.repo.DB(), func(tx *gorm.DB) error {
		return l.repo.CreateMovementTx(tx, mov)
	})
	if txErr != nil {
		return nil, persistence("cash movement", txErr)
	}
	return movementToResponse(mov), nil
}

func (l *cashLedger) Balance(ctx context.Context, tillID uuid.UUID) (decimal.Decimal, error) {
	if _, err := l.repo.FindByID(ctx, tillID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNoSuchTill
		}
		return decimal.Zero, persistence("balance", err)
	}

	totals, err := l.repo.SumMovements(ctx, tillID)
	if err != nil {
		return decimal.Zero, persistence("balance", err)
	}
	// The opening float was logged as the first inflow, so the log sum is
	// the drawer balance.
	return totals.Inflows.Sub(totals.Outflows), nil
}

func (l *cashLedger) MovementsBetween(ctx context.Context, tillID uuid.UUID, filter dto.MovementRangeFilter) (*dto.MovementListResponse, error) {
	if _, err := l.repo.FindByID(ctx, tillID); err != nil {
		return nil, ErrNoSuchTill
	}

	from, to := parseDateRange(filter.From, filter.To)
	movs, total, err := l.repo.ListMovementsBetween(ctx, tillID, from, to, filter.Page, filter.Limit)
	if err != nil {
		return nil, persistence("movement list", err)
	}

	data := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		data = append(data, *movementToResponse(&movs[i]))
	}
	return &dto.MovementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// parseDateRange widens [from, to] to whole days; an empty bound falls back
// to an open interval.
func parseDateRange(fromStr, toStr string) (time.Time, time.Time) {
	from := time.Time{}
	to := time.Now()
	if t, err := time.Parse("2006-01-02", fromStr); err == nil {
		from = t
	}
	if t, err := time.Parse("2006-01-02", toStr); err == nil {
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to
}

func movementToResponse(m *model.CashMovement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:            m.ID.String(),
		TillID:        m.TillID.String(),
		OccurredAt:    m.OccurredAt.Format(time.RFC3339),
		Direction:     m.Direction,
		Description:   m.Descr,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		ReferenceKind: m.ReferenceKind,
		Operator:      m.Operator,
	}
	if m.ReferenceID != nil {
		ref := m.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}
