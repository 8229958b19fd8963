package infra

// ratesheet.go — PDF export of an ISO's billable rate table using go-pdf/fpdf.
// One table per link: brand / modality / channel / base cost / margin / final
// rate, all values as fixed-point strings. Rendered straight into memory and
// streamed to the client.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
)

// RenderRateSheet renders the ISO's current cost snapshots as an A4 rate
// sheet and returns the PDF bytes.
func RenderRateSheet(iso *model.ISO, snapshots []model.CostSnapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Outbank — MDR Rate Sheet", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, iso.Name, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Column layout ────────────────────────────────────────────────────────
	widths := []float64{
		contentW * 0.18, // brand
		contentW * 0.22, // modality
		contentW * 0.12, // channel
		contentW * 0.16, // base
		contentW * 0.16, // margin
		contentW * 0.16, // final
	}
	headers := []string{"Brand", "Modality", "Channel", "Base", "Margin", "Final"}

	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, s := range snapshots {
		pdf.CellFormat(widths[0], 5, string(s.Brand), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 5, string(s.Modality), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 5, string(s.Channel), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 5, pricing.FormatMargin(s.CustoBase), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 5, pricing.FormatMargin(s.MarginIso), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 5, pricing.FormatMargin(s.TaxaFinal), "", 1, "R", false, 0, "")
	}

	if len(snapshots) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 8, "No billable rates — no validated link.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ratesheet: render: %w", err)
	}
	return buf.Bytes(), nil
}
