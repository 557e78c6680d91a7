package service

import (
	"context"
	"errors"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TillService owns the till session state machine: open → closed, at most
// one open till at any time. The invariant is enforced twice — a pre-check
// here for a friendly error, and a partial unique index on the table for
// correctness under concurrent opens.
type TillService interface {
	Open(ctx context.Context, operator string, req dto.OpenTillRequest) (*dto.TillResponse, error)
	Close(ctx context.Context, operator string, req dto.CloseTillRequest) (*dto.ClosedTillSummary, error)
	// CurrentOpen returns nil (no error) when no till is open.
	CurrentOpen(ctx context.Context) (*dto.TillResponse, error)
	History(ctx context.Context, page, limit int) ([]dto.TillResponse, int64, error)
	// RequireOpen is called by SaleService to resolve the open till.
	RequireOpen(ctx context.Context) (*model.Till, error)
}

type tillService struct {
	repo       repository.TillRepository
	dispatcher *worker.Dispatcher
}

func NewTillService(repo repository.TillRepository, dispatcher *worker.Dispatcher) TillService {
	return &tillService{repo: repo, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *tillService) Open(ctx context.Context, operator string, req dto.OpenTillRequest) (*dto.TillResponse, error) {
	if req.OpeningBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.FindOpen(ctx); err == nil {
		return nil, ErrTillAlreadyOpen
	}

	till := &model.Till{
		OpenedAt:       time.Now(),
		OpeningBalance: req.OpeningBalance,
		Operator:       operator,
		Status:         model.TillOpen,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, till); err != nil {
			return err
		}
		// The opening float enters the ledger as a regular inflow so that
		// the movement log alone reconstructs the balance.
		if req.OpeningBalance.IsPositive() {
			mov := &model.CashMovement{
				TillID:        till.ID,
				OccurredAt:    till.OpenedAt,
				Direction:     model.DirectionInflow,
				Descr:         "Saldo inicial",
				Amount:        req.OpeningBalance,
				ReferenceKind: model.RefOpeningBalance,
				Operator:      operator,
			}
			if err := s.repo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		// Two concurrent opens race past the pre-check; the partial unique
		// index rejects the second one.
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, ErrTillAlreadyOpen
		}
		return nil, persistence("till open", txErr)
	}

	return tillToResponse(till), nil
}

// ── Close ────────────────────────────────────────────────────────────────────

func (s *tillService) Close(ctx context.Context, operator string, req dto.CloseTillRequest) (*dto.ClosedTillSummary, error) {
	tillID, err := uuid.Parse(req.TillID)
	if err != nil {
		return nil, ErrNoSuchTill
	}

	till, err := s.repo.FindByID(ctx, tillID)
	if err != nil {
		return nil, ErrNoSuchTill
	}
	if till.Status != model.TillOpen {
		return nil, ErrTillNotOpen
	}

	var totals repository.CashTotals
	var computed decimal.Decimal
	closedAt := time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Recompute from the full movement log inside the transaction so the
		// stored closing balance matches exactly what the ledger says.
		totals, err = s.sumMovements(ctx, tx, tillID)
		if err != nil {
			return err
		}
		// The opening float is already an inflow movement, so the log alone
		// yields the drawer balance.
		computed = totals.Inflows.Sub(totals.Outflows)
		variance := req.DeclaredBalance.Sub(computed)

		till.ComputedClosingBalance = &computed
		declared := req.DeclaredBalance
		till.DeclaredClosingBalance = &declared
		till.Variance = &variance
		till.Status = model.TillClosed
		till.ClosedAt = &closedAt
		till.Note = req.Note
		till.Operator = operator
		return s.repo.UpdateTx(tx, till)
	})
	if txErr != nil {
		return nil, persistence("till close", txErr)
	}

	summary := &dto.ClosedTillSummary{
		TillID:                 till.ID.String(),
		OpenedAt:               till.OpenedAt.Format(time.RFC3339),
		ClosedAt:               closedAt.Format(time.RFC3339),
		OpeningBalance:         till.OpeningBalance,
		ComputedClosingBalance: computed,
		DeclaredClosingBalance: req.DeclaredBalance,
		Variance:               *till.Variance,
		TotalInflows:           totals.Inflows,
		TotalOutflows:          totals.Outflows,
		Operator:               operator,
	}

	// Closing report generation and delivery are best-effort — the close
	// itself has already committed.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueClosingReport(ctx, worker.ClosingReportPayload{
			TillID: till.ID.String(),
		})
	}

	return summary, nil
}

// sumMovements prefers the transaction handle when one is live so that the
// aggregate sees the same snapshot the close writes against.
func (s *tillService) sumMovements(ctx context.Context, tx *gorm.DB, tillID uuid.UUID) (repository.CashTotals, error) {
	if tx != nil {
		return s.repo.SumMovementsTx(tx, tillID)
	}
	return s.repo.SumMovements(ctx, tillID)
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *tillService) CurrentOpen(ctx context.Context) (*dto.TillResponse, error) {
	till, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistence("till lookup", err)
	}
	return tillToResponse(till), nil
}

func (s *tillService) History(ctx context.Context, page, limit int) ([]dto.TillResponse, int64, error) {
	tills, total, err := s.repo.ListClosed(ctx, page, limit)
	if err != nil {
		return nil, 0, persistence("till history", err)
	}
	out := make([]dto.TillResponse, 0, len(tills))
	for i := range tills {
		out = append(out, *tillToResponse(&tills[i]))
	}
	return out, total, nil
}

func (s *tillService) RequireOpen(ctx context.Context) (*model.Till, error) {
	till, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenTill
		}
		return nil, persistence("till lookup", err)
	}
	return till, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func tillToResponse(t *model.Till) *dto.TillResponse {
	resp := &dto.TillResponse{
		ID:                     t.ID.String(),
		OpenedAt:               t.OpenedAt.Format(time.RFC3339),
		OpeningBalance:         t.OpeningBalance,
		ComputedClosingBalance: t.ComputedClosingBalance,
		DeclaredClosingBalance: t.DeclaredClosingBalance,
		Variance:               t.Variance,
		Operator:               t.Operator,
		Status:                 t.Status,
		Note:                   t.Note,
	}
	if t.ClosedAt != nil {
		closed := t.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
