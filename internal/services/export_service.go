package services

import (
	"bytes"
	"context"
	"io"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/export"
	"pocketledger/internal/models"
)

// exportService renders the history table and the downloads from a fresh
// store snapshot, newest first.
type exportService struct {
	transactions TransactionServicer
	formatter    export.Formatter
}

// NewExportService creates a new ExportServicer.
func NewExportService(transactions TransactionServicer, formatter export.Formatter) ExportServicer {
	return &exportService{transactions: transactions, formatter: formatter}
}

// HistoryTable returns the on-screen table rows.
func (s *exportService) HistoryTable(ctx context.Context, userID string) ([]export.TableRow, error) {
	txs, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.formatter.TableRows(txs), nil
}

// ExportCSV writes transactions.csv to w. Nothing is written on failure.
func (s *exportService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	return s.encode(ctx, userID, w, s.formatter.EncodeCSV)
}

// ExportPDF writes transactions.pdf to w. Nothing is written on failure.
func (s *exportService) ExportPDF(ctx context.Context, userID string, w io.Writer) error {
	return s.encode(ctx, userID, w, s.formatter.EncodePDF)
}

func (s *exportService) encode(ctx context.Context, userID string, w io.Writer, enc func(io.Writer, []models.Transaction) error) error {
	txs, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := enc(&buf, txs); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return apperrors.WithCause(apperrors.ErrExportEncoding, err)
	}
	return nil
}
