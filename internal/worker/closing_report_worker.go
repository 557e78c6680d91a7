package worker

// closing_report_worker.go
// Processes closing-report jobs from QueueClosingReport: rebuilds the
// reconciliation sheet of the just-closed till, renders the PDF, and hands
// delivery off to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const closingReportMaxAttempts = 3

// ClosingReportPayload is the job envelope sent to QueueClosingReport.
type ClosingReportPayload struct {
	TillID string `json:"till_id"`
}

// ClosingReportSource yields the reconciliation data of one till session.
// Satisfied by the report service; declared here to keep the dependency
// pointing from services to workers, not both ways.
type ClosingReportSource interface {
	TillClosingReport(ctx context.Context, tillID uuid.UUID) (*dto.TillClosingReport, error)
}

// ClosingReportWorker renders and dispatches the closing report of a till.
type ClosingReportWorker struct {
	reports         ClosingReportSource
	dispatcher      *Dispatcher
	rdb             *redis.Client
	pdfStoragePath  string
	storeName       string
	supervisorEmail string
}

func NewClosingReportWorker(
	reports ClosingReportSource,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath, storeName, supervisorEmail string,
) *ClosingReportWorker {
	return &ClosingReportWorker{
		reports:         reports,
		dispatcher:      dispatcher,
		rdb:             rdb,
		pdfStoragePath:  pdfStoragePath,
		storeName:       storeName,
		supervisorEmail: supervisorEmail,
	}
}

// Process handles a single closing-report job:
//  1. Parse ClosingReportPayload from the job envelope
//  2. Rebuild the closing report from the ledger (with retries)
//  3. Render the PDF
//  4. Enqueue the supervisor email with the PDF attached
func (w *ClosingReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ClosingReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("closing_report_worker: invalid payload")
		return
	}

	tillID, err := uuid.Parse(payload.TillID)
	if err != nil {
		log.Error().Str("till_id", payload.TillID).Msg("closing_report_worker: invalid till_id")
		return
	}

	var report *dto.TillClosingReport
	fetchErr := withRetry(ctx, closingReportMaxAttempts, func(attempt int) error {
		r, err := w.reports.TillClosingReport(ctx, tillID)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("till_id", payload.TillID).
				Msg("closing_report_worker: report fetch failed, retrying")
			return err
		}
		report = r
		return nil
	})
	if fetchErr != nil {
		log.Error().Err(fetchErr).Str("till_id", payload.TillID).
			Msg("closing_report_worker: giving up after retries")
		SendToDLQ(ctx, w.rdb, QueueClosingReport, "closing_report", raw,
			fetchErr.Error(), closingReportMaxAttempts)
		return
	}

	pdfPath, pdfErr := infra.GenerateClosingReportPDF(report, w.storeName, w.pdfStoragePath)
	if pdfErr != nil {
		// Mail the summary without the attachment rather than dropping it.
		log.Warn().Err(pdfErr).Str("till_id", payload.TillID).
			Msg("closing_report_worker: PDF generation failed")
		pdfPath = ""
	}

	if w.supervisorEmail == "" {
		log.Info().Str("till_id", payload.TillID).
			Msg("closing_report_worker: no supervisor email configured, report stored only")
		return
	}

	closedAt := ""
	if report.ClosedAt != nil {
		closedAt = *report.ClosedAt
	}
	variance := "0.00"
	if report.Variance != nil {
		variance = report.Variance.StringFixed(2)
	}
	emailJob := EmailJobPayload{
		ToEmail: w.supervisorEmail,
		Subject: fmt.Sprintf("%s — Fechamento de caixa %s", w.storeName, closedAt),
		Body: fmt.Sprintf(
			"Caixa fechado por %s.\nSaldo calculado: R$ %s\nSaldo informado: R$ %s\nDiferença: R$ %s\nVendas: %d (R$ %s)",
			report.Operator,
			report.ComputedClosingBalance.StringFixed(2),
			declaredOrDash(report),
			variance,
			report.SaleCount,
			report.SaleTotal.StringFixed(2),
		),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("till_id", payload.TillID).
			Msg("closing_report_worker: failed to enqueue email")
		return
	}
	log.Info().Str("till_id", payload.TillID).Str("pdf", pdfPath).
		Msg("closing_report_worker: report generated and email enqueued")
}

func declaredOrDash(r *dto.TillClosingReport) string {
	if r.DeclaredClosingBalance == nil {
		return "-"
	}
	return r.DeclaredClosingBalance.StringFixed(2)
}
