// Package export shapes transactions into rows for the history table and
// the CSV and PDF downloads, and encodes those downloads.
//
// Each consumer has its own placeholder for absent values: a missing
// description is "N/A" in the CSV but "-" in the PDF and the table. The
// difference is deliberate and long-standing; keep it.
package export

import (
	"time"

	"pocketledger/internal/models"
)

const (
	notAvailable = "N/A"
	dash         = "-"
)

// Header is the column order shared by every export.
var Header = []string{"Date", "Description", "Category", "Type", "Amount"}

// Formatter renders transaction fields. DateLayout and Location describe
// the calendar representation users expect, e.g. "1/2/2006" in local time.
type Formatter struct {
	DateLayout string
	Location   *time.Location
}

// NewFormatter returns a Formatter, defaulting to a US-style short date in
// the server's local zone.
func NewFormatter(layout string, loc *time.Location) Formatter {
	if layout == "" {
		layout = "1/2/2006"
	}
	if loc == nil {
		loc = time.Local
	}
	return Formatter{DateLayout: layout, Location: loc}
}

// CSVRow is one line of transactions.csv.
type CSVRow struct {
	Date        string
	Description string
	Category    string
	Type        string
	Amount      string
}

// Record returns the row in Header order.
func (r CSVRow) Record() []string {
	return []string{r.Date, r.Description, r.Category, r.Type, r.Amount}
}

// PDFRow is one table row of transactions.pdf, in Header order.
type PDFRow [5]string

// TableRow is one row of the on-screen transaction history.
type TableRow struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
}

// CSVRows maps every transaction to a CSV row, in input order.
func (f Formatter) CSVRows(txs []models.Transaction) []CSVRow {
	rows := make([]CSVRow, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		amount := "0"
		if tx.Amount.Valid {
			amount = tx.Amount.Decimal.String()
		}
		rows = append(rows, CSVRow{
			Date:        f.date(tx.Date, notAvailable),
			Description: orDefault(tx.Description, notAvailable),
			Category:    orDefault(tx.Category, notAvailable),
			Type:        orDefault(string(tx.Type), notAvailable),
			Amount:      amount,
		})
	}
	return rows
}

// PDFRows maps every transaction to a PDF table row, in input order.
func (f Formatter) PDFRows(txs []models.Transaction) []PDFRow {
	rows := make([]PDFRow, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		rows = append(rows, PDFRow{
			f.date(tx.Date, notAvailable),
			orDefault(tx.Description, dash),
			orDefault(tx.Category, notAvailable),
			orDefault(string(tx.Type), notAvailable),
			currency(tx, "$0.00"),
		})
	}
	return rows
}

// TableRows maps every transaction to a history table row, in input order.
func (f Formatter) TableRows(txs []models.Transaction) []TableRow {
	rows := make([]TableRow, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		rows = append(rows, TableRow{
			ID:          tx.ID,
			Date:        f.date(tx.Date, dash),
			Description: orDefault(tx.Description, dash),
			Category:    tx.Category,
			Type:        string(tx.Type),
			Amount:      currency(tx, dash),
		})
	}
	return rows
}

func (f Formatter) date(t *time.Time, placeholder string) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.In(f.Location).Format(f.DateLayout)
}

func currency(tx *models.Transaction, placeholder string) string {
	if !tx.Amount.Valid {
		return placeholder
	}
	return "$" + tx.Amount.Decimal.StringFixed(2)
}

func orDefault(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
