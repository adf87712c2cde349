package export

import (
	"io"

	"github.com/go-pdf/fpdf"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
)

// PDFFilename is the attachment name of the PDF export.
const PDFFilename = "transactions.pdf"

// PDFTitle is printed above the table and stored in the document info.
const PDFTitle = "Transaction History"

const (
	titleX      = 20.0
	titleY      = 10.0
	tableTop    = 20.0
	lineHeight  = 5.0
	headerH     = 8.0
	cellPadding = 2.0
)

// Column widths in mm, Header order. They add up to the A4 width minus
// the default 10mm side margins.
var columnWidths = [5]float64{28, 66, 34, 22, 40}

var errPDFEncoding = apperrors.WithMessage(apperrors.ErrExportEncoding, "Failed to export PDF")

// EncodePDF renders the transactions as a titled table and writes the PDF
// document to w. Long cell text wraps onto extra lines and the table
// continues on new pages with a repeated header. An empty input is reported
// as ErrNothingToExport before anything is written.
func (f Formatter) EncodePDF(w io.Writer, txs []models.Transaction) error {
	if len(txs) == 0 {
		return apperrors.ErrNothingToExport
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(PDFTitle, false)
	pdf.SetCreator("pocketledger", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(titleX, titleY, PDFTitle)

	pdf.SetY(tableTop)
	drawHeader(pdf)

	pdf.SetFont("Helvetica", "", 9)
	_, pageH := pdf.GetPageSize()
	left, _, _, bottom := pdf.GetMargins()
	if bottom == 0 {
		bottom = 10
	}

	for _, row := range f.PDFRows(txs) {
		cells := [5]string{}
		lines := 1
		for i, text := range row {
			cells[i] = tr(text)
			if n := len(pdf.SplitText(cells[i], columnWidths[i]-cellPadding)); n > lines {
				lines = n
			}
		}
		rowH := float64(lines) * lineHeight

		if pdf.GetY()+rowH > pageH-bottom {
			pdf.AddPage()
			drawHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}

		y := pdf.GetY()
		x := left
		for i, text := range cells {
			pdf.Rect(x, y, columnWidths[i], rowH, "D")
			pdf.SetXY(x, y)
			align := "L"
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.MultiCell(columnWidths[i], lineHeight, text, "", align, false)
			x += columnWidths[i]
		}
		pdf.SetXY(left, y+rowH)
	}

	if err := pdf.Error(); err != nil {
		return apperrors.WithCause(errPDFEncoding, err)
	}
	if err := pdf.Output(w); err != nil {
		return apperrors.WithCause(errPDFEncoding, err)
	}
	return nil
}

func drawHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	for i, name := range Header {
		pdf.CellFormat(columnWidths[i], headerH, name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}
