package service

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const (
	sheetOverview = "Übersicht"
	sheetPayments = "Zahlungsarten"
	sheetTop      = "Top-Artikel"
)

// WriteDailyReportXLSX writes the report as a workbook with one sheet per section
func WriteDailyReportXLSX(report *entity.DailyReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetOverview); err != nil {
		return errors.Wrap(err, "failed to name overview sheet")
	}
	for _, name := range []string{sheetPayments, sheetTop} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", name)
		}
	}

	overview := [][]interface{}{
		{"Datum", report.Date},
		{"Umsatz", report.TotalRevenue.Float64()},
		{"Transaktionen", report.TotalTransactions},
		{"Durchschnitt", report.AvgTransaction.Float64()},
	}
	for i, row := range overview {
		if err := f.SetSheetRow(sheetOverview, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return errors.Wrap(err, "failed to write overview")
		}
	}

	if err := f.SetSheetRow(sheetPayments, "A1", &[]interface{}{"Zahlungsart", "Anzahl", "Betrag"}); err != nil {
		return errors.Wrap(err, "failed to write payment header")
	}
	for i, p := range report.PaymentSummary {
		row := []interface{}{p.PaymentMethod.String(), p.Count, p.Amount.Float64()}
		if err := f.SetSheetRow(sheetPayments, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return errors.Wrap(err, "failed to write payment row")
		}
	}

	if err := f.SetSheetRow(sheetTop, "A1", &[]interface{}{"Rang", "Artikel", "Menge", "Umsatz"}); err != nil {
		return errors.Wrap(err, "failed to write product header")
	}
	for i, p := range report.TopProducts {
		row := []interface{}{i + 1, p.Name, p.Quantity, p.Revenue.Float64()}
		if err := f.SetSheetRow(sheetTop, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return errors.Wrap(err, "failed to write product row")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// WriteDailyReportPDF writes the report as a one-page A4 PDF
func WriteDailyReportPDF(report *entity.DailyReport, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; translate umlauts and the euro sign
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Tagesbericht "+report.Date), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Tagesbericht "+report.Date), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	summary := [][2]string{
		{"Umsatz", report.TotalRevenue.Euro()},
		{"Transaktionen", fmt.Sprintf("%d", report.TotalTransactions)},
		{"Durchschnitt", report.AvgTransaction.Euro()},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(row[1]), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Zahlungsarten", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Zahlungsart", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Anzahl", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Betrag", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range report.PaymentSummary {
		pdf.CellFormat(60, 7, tr(p.PaymentMethod.String()), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", p.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(p.Amount.Euro()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Top-Artikel", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(15, 7, "#", "1", 0, "R", false, 0, "")
	pdf.CellFormat(75, 7, "Artikel", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Menge", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Umsatz", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range report.TopProducts {
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "R", false, 0, "")
		pdf.CellFormat(75, 7, tr(p.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", p.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(p.Revenue.Euro()), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "failed to render pdf")
	}
	return nil
}
