/*
export.go - Expense export in CSV, Excel, and PDF

PURPOSE:
  Streams the user's filtered expenses as a downloadable file and
  appends an audit row to export_history for every export served.

FORMATS:
  CSV:   encoding/csv with a UTF-8 BOM so Excel renders Arabic
         category names correctly
  Excel: xuri/excelize, one "Expenses" sheet with a totals row
  PDF:   phpdave11/gofpdf, A4 portrait summary table

SEE ALSO:
  - handlers.go: Expense listing uses the same filter parsing
*/
package api

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
)

// exportRow is one line of any export format.
type exportRow struct {
	Date     string
	Category string
	Amount   string
	Note     string
}

// collectExportRows loads filtered expenses and flattens them with
// resolved category names.
func (h *Handler) collectExportRows(r *http.Request) ([]exportRow, decimal.Decimal, finance.ExportRecord, error) {
	user := currentUser(r)
	rec := finance.ExportRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}

	f := finance.ExpenseFilter{CategoryID: r.URL.Query().Get("category_id")}
	rec.CategoryID = f.CategoryID
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			return nil, decimal.Zero, rec, fmt.Errorf("date_from: %w", errBadDate)
		}
		f.From = &t
		rec.DateFrom = &t
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			return nil, decimal.Zero, rec, fmt.Errorf("date_to: %w", errBadDate)
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
		rec.DateTo = &t
	}

	expenses, _, err := h.Service.ListExpenses(r.Context(), user.ID, f)
	if err != nil {
		return nil, decimal.Zero, rec, err
	}
	categories, err := h.Store.ListCategories(r.Context(), user.ID)
	if err != nil {
		return nil, decimal.Zero, rec, err
	}
	names := make(map[string]string, len(categories))
	l := lang(r)
	for _, c := range categories {
		names[c.ID] = c.Name(l)
	}

	total := decimal.Zero
	rows := make([]exportRow, 0, len(expenses))
	for _, e := range expenses {
		total = total.Add(e.Amount)
		rows = append(rows, exportRow{
			Date:     e.Date.Format(dateLayout),
			Category: names[e.CategoryID],
			Amount:   money(e.Amount),
			Note:     e.Note,
		})
	}
	rec.RecordCount = len(rows)
	return rows, total, rec, nil
}

var errBadDate = fmt.Errorf("date must be YYYY-MM-DD")

func (h *Handler) finishExport(r *http.Request, rec finance.ExportRecord, format string, size int) {
	rec.Format = format
	rec.FileSize = int64(size)
	// Audit write is best effort; the file is already on the wire.
	_ = h.Store.SaveExportRecord(r.Context(), rec)
}

// ExportCSV streams expenses as CSV.
// GET /api/export/csv?date_from=&date_to=&category_id=
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, total, rec, err := h.collectExportRows(r)
	if err != nil {
		writeExportError(w, err)
		return
	}

	var buf bytes.Buffer
	// UTF-8 BOM so Excel renders Arabic names correctly.
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	cw := csv.NewWriter(&buf)
	cw.Write([]string{"Date", "Category", "Amount", "Note"})
	for _, row := range rows {
		cw.Write([]string{row.Date, row.Category, row.Amount, row.Note})
	}
	cw.Write([]string{"", "Total", total.StringFixed(2), ""})
	cw.Flush()
	if err := cw.Error(); err != nil {
		writeDomainError(w, err)
		return
	}

	h.finishExport(r, rec, "csv", buf.Len())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="expenses_%s.csv"`, time.Now().Format("20060102")))
	w.Write(buf.Bytes())
}

// ExportExcel streams expenses as an xlsx workbook.
// GET /api/export/excel?date_from=&date_to=&category_id=
func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	rows, total, rec, err := h.collectExportRows(r)
	if err != nil {
		writeExportError(w, err)
		return
	}

	f := excelize.NewFile()
	const sheet = "Expenses"
	index, err := f.NewSheet(sheet)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Category", "Amount", "Note"}
	for i, head := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, head)
	}
	for idx, row := range rows {
		n := idx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", n), row.Date)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", n), row.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", n), row.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", n), row.Note)
	}
	totalRow := len(rows) + 2
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), total.StringFixed(2))

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "D", "D", 30)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		writeDomainError(w, err)
		return
	}

	h.finishExport(r, rec, "excel", buf.Len())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="expenses_%s.xlsx"`, time.Now().Format("20060102")))
	w.Write(buf.Bytes())
}

// ExportPDF streams expenses as a PDF report.
// GET /api/export/pdf?date_from=&date_to=&category_id=
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	rows, total, rec, err := h.collectExportRows(r)
	if err != nil {
		writeExportError(w, err)
		return
	}
	user := currentUser(r)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Expense Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Expense Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Account: %s", user.Email))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format(dateLayout)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(30, 7, "Date")
	pdf.Cell(50, 7, "Category")
	pdf.Cell(30, 7, "Amount")
	pdf.Cell(80, 7, "Note")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.Cell(30, 7, row.Date)
		pdf.Cell(50, 7, row.Category)
		pdf.Cell(30, 7, row.Amount)
		pdf.Cell(80, 7, row.Note)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s", total.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		writeDomainError(w, err)
		return
	}

	h.finishExport(r, rec, "pdf", buf.Len())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="expenses_%s.pdf"`, time.Now().Format("20060102")))
	w.Write(buf.Bytes())
}

// ExportHistory lists past exports, newest first.
// GET /api/export/history
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	records, err := h.Store.ListExportRecords(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ExportRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toExportRecordDTO(rec))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

func writeExportError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadDate) {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
		return
	}
	writeDomainError(w, err)
}
