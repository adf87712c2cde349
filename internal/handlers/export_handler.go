package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/export"
	"pocketledger/internal/services"
)

const (
	contentTypeCSV = "text/csv; charset=utf-8"
	contentTypePDF = "application/pdf"
)

// ExportHandler serves transaction downloads.
type ExportHandler struct {
	exportService services.ExportServicer
	auditService  services.AuditServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer, auditService services.AuditServicer) *ExportHandler {
	return &ExportHandler{exportService: exportService, auditService: auditService}
}

// ExportCSV downloads the history as CSV
// @Summary     Export CSV
// @Description Download all transactions as transactions.csv
// @Tags        export
// @Produce     text/csv
// @Security    BearerAuth
// @Success     200 {file} file "transactions.csv"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "No transactions to export"
// @Failure     500 {object} ErrorResponse "Export failed"
// @Router      /export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.serve(c, "csv", export.CSVFilename, contentTypeCSV, h.exportService.ExportCSV)
}

// ExportPDF downloads the history as PDF
// @Summary     Export PDF
// @Description Download all transactions as transactions.pdf
// @Tags        export
// @Produce     application/pdf
// @Security    BearerAuth
// @Success     200 {file} file "transactions.pdf"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "No transactions to export"
// @Failure     500 {object} ErrorResponse "Export failed"
// @Router      /export/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	h.serve(c, "pdf", export.PDFFilename, contentTypePDF, h.exportService.ExportPDF)
}

// serve renders into a buffer first so a failed export still gets a JSON
// error instead of a truncated attachment.
func (h *ExportHandler) serve(c *gin.Context, format, filename, contentType string,
	render func(ctx context.Context, userID string, w io.Writer) error) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render(c.Request.Context(), userID, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionExport, "export", format, c.ClientIP(), nil)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
