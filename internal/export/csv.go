package export

import (
	"encoding/csv"
	"io"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
)

// CSVFilename is the attachment name of the CSV export.
const CSVFilename = "transactions.csv"

var errCSVEncoding = apperrors.WithMessage(apperrors.ErrExportEncoding, "Failed to export CSV")

// EncodeCSV writes a header line and one CSV row per transaction to w.
// Lines end in CRLF. An empty input is reported as ErrNothingToExport
// before anything is written.
func (f Formatter) EncodeCSV(w io.Writer, txs []models.Transaction) error {
	if len(txs) == 0 {
		return apperrors.ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return apperrors.WithCause(errCSVEncoding, err)
	}
	for _, row := range f.CSVRows(txs) {
		if err := cw.Write(row.Record()); err != nil {
			return apperrors.WithCause(errCSVEncoding, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.WithCause(errCSVEncoding, err)
	}
	return nil
}
