package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
	"pocketledger/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	dashboardService   services.DashboardServicer
	exportService      services.ExportServicer
	auditService       services.AuditServicer
	location           *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Calendar dates in
// requests are interpreted in loc.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	dashboardService services.DashboardServicer,
	exportService services.ExportServicer,
	auditService services.AuditServicer,
	loc *time.Location,
) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{
		transactionService: transactionService,
		dashboardService:   dashboardService,
		exportService:      exportService,
		auditService:       auditService,
		location:           loc,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount      json.Number            `json:"amount" binding:"required,amount"`
	Category    string                 `json:"category" binding:"required,max=100"`
	Date        string                 `json:"date"`
	Description string                 `json:"description" binding:"max=500"`
}

// CreateTransactionResponse carries the stored record and the dashboard
// recomputed after it.
type CreateTransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	Dashboard   *services.Dashboard `json:"dashboard"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Store an income or expense, then return it with the refreshed dashboard
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} CreateTransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	in := services.CreateTransactionInput{
		Type:        req.Type,
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date, h.location)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.Date = &date
	}

	tx, dashboard, err := h.dashboardService.AddTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateTransaction, "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"type": tx.Type, "amount": amount.String(), "category": tx.Category})

	c.JSON(http.StatusCreated, CreateTransactionResponse{Transaction: tx, Dashboard: dashboard})
}

// GetTransactions handles the retrieval of the user's transactions
// @Summary     List transactions
// @Description Paginated transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetTransactionsPage(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistoryTable returns the transaction history formatted for display
// @Summary     Transaction history table
// @Description All transactions as display rows, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} export.TableRow "History rows"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/table [get]
func (h *TransactionHandler) GetHistoryTable(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.exportService.HistoryTable(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
