package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/export"
	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	FindOrCreateGoogleUser(email, displayName string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
}

// CreateTransactionInput carries a new transaction as entered by the user.
// Date and Description are optional.
type CreateTransactionInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Date        *time.Time
	Description string
}

// TransactionServicer is the per-user transaction store. Every call is one
// store round trip; failures surface as ErrStore and are not retried.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionsPage(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// DashboardServicer recomputes the derived dashboard from the store and the
// session budget.
type DashboardServicer interface {
	Refresh(ctx context.Context, userID string) (*Dashboard, error)
	SetBudget(ctx context.Context, userID string, budget decimal.Decimal) (*Dashboard, error)
	DismissAlert(ctx context.Context, userID string) (bool, error)
	AddTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*models.Transaction, *Dashboard, error)
	EndSession(userID string)
}

// ExportServicer renders the user's transaction history.
type ExportServicer interface {
	HistoryTable(ctx context.Context, userID string) ([]export.TableRow, error)
	ExportCSV(ctx context.Context, userID string, w io.Writer) error
	ExportPDF(ctx context.Context, userID string, w io.Writer) error
}

// GoogleProfile is the identity returned by Google sign-in.
type GoogleProfile struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	VerifiedEmail bool   `json:"verified_email"`
}

// GoogleAuthServicer drives the Google OAuth2 authorization code flow.
type GoogleAuthServicer interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
