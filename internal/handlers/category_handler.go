package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/models"
)

// CategoryHandler serves the suggested category lists.
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoriesResponse maps each transaction type to its suggested categories.
type CategoriesResponse struct {
	Categories map[models.TransactionType][]string `json:"categories"`
}

// GetCategories returns the suggested categories per transaction type
// @Summary     Get suggested categories
// @Description Categories offered per transaction type. Any category text is accepted on create.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoriesResponse "Suggested categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{Categories: models.SuggestedCategories})
}
