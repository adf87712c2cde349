package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/services"
)

// DashboardHandler serves the derived dashboard and the session budget.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	auditService     services.AuditServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer, auditService services.AuditServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, auditService: auditService}
}

// SetBudgetRequest represents the request payload for setting the budget.
// Zero turns the alert off.
type SetBudgetRequest struct {
	Budget json.Number `json:"budget" binding:"required,nonneg_decimal"`
}

// DismissAlertResponse reports whether a visible alert was acknowledged.
type DismissAlertResponse struct {
	Dismissed bool `json:"dismissed"`
}

// GetDashboard recomputes the dashboard
// @Summary     Get dashboard
// @Description Totals, balance, category breakdown and the budget alert, computed from a fresh read
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.dashboardService.Refresh(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// SetBudget replaces the session budget
// @Summary     Set budget
// @Description Set the spending budget for this session and recompute the dashboard
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /dashboard/budget [put]
func (h *DashboardHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	budget, err := decimal.NewFromString(req.Budget.String())
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Budget must be a number"))
		return
	}

	dashboard, err := h.dashboardService.SetBudget(c.Request.Context(), userID, budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionSetBudget, "budget", userID, c.ClientIP(),
		map[string]interface{}{"budget": budget.String()})
	c.JSON(http.StatusOK, dashboard)
}

// DismissAlert acknowledges the visible budget alert
// @Summary     Dismiss budget alert
// @Description Hide the current alert. It stays hidden until expenses or budget change.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DismissAlertResponse "Result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/alert/dismiss [post]
func (h *DashboardHandler) DismissAlert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dismissed, err := h.dashboardService.DismissAlert(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DismissAlertResponse{Dismissed: dismissed})
}
