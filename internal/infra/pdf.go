package infra

// pdf.go — till closing report rendered with go-pdf/fpdf.
// A5 portrait sheet mirroring the reconciliation view: session times and
// operator, opening balance, movement totals, computed vs declared closing
// balance, the variance, and sale count/value.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateClosingReportPDF writes the closing report of one till session to
// storagePath/fechamento_{tillID}.pdf and returns the absolute path.
func GenerateClosingReportPDF(report *dto.TillClosingReport, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", report.TillID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 9, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(4)

	labelW := contentW * 0.55
	valueW := contentW * 0.45

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
	}

	// ── Session ──────────────────────────────────────────────────────────────
	row("Operador:", report.Operator, false)
	row("Abertura:", report.OpenedAt, false)
	if report.ClosedAt != nil {
		row("Fechamento:", *report.ClosedAt, false)
	}
	pdf.Ln(2)

	// ── Ledger ───────────────────────────────────────────────────────────────
	row("Saldo inicial:", "R$ "+report.OpeningBalance.StringFixed(2), false)
	row("Total de entradas:", "R$ "+report.TotalInflows.StringFixed(2), false)
	row("Total de saídas:", "R$ "+report.TotalOutflows.StringFixed(2), false)
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	row("Saldo calculado:", "R$ "+report.ComputedClosingBalance.StringFixed(2), true)
	if report.DeclaredClosingBalance != nil {
		row("Saldo informado:", "R$ "+report.DeclaredClosingBalance.StringFixed(2), true)
	}
	if report.Variance != nil {
		row("Diferença:", "R$ "+report.Variance.StringFixed(2), true)
	}
	pdf.Ln(2)

	// ── Sales ────────────────────────────────────────────────────────────────
	row("Vendas registradas:", fmt.Sprintf("%d", report.SaleCount), false)
	row("Total em vendas:", "R$ "+report.SaleTotal.StringFixed(2), false)

	if report.Note != nil && *report.Note != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 5, "Obs: "+*report.Note, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
