package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pocketledger/internal/export"
	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
	"pocketledger/internal/services"
	"pocketledger/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn             func(email, password, displayName string) (*models.User, error)
	getUserByIDFn            func(id string) (*models.User, error)
	attemptLoginFn           func(email, password string) (*models.User, error)
	findOrCreateGoogleUserFn func(email, displayName string) (*models.User, error)
	storeRefreshTokenHashFn  func(userID string, tokenHash string) error
	getRefreshTokenHashFn    func(userID string) (string, error)
	clearRefreshTokenHashFn  func(userID string) error
}

func (m *mockUserService) CreateUser(email, password, displayName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, displayName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	return &models.User{Email: email}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) FindOrCreateGoogleUser(email, displayName string) (*models.User, error) {
	if m.findOrCreateGoogleUserFn != nil {
		return m.findOrCreateGoogleUserFn(email, displayName)
	}
	return &models.User{Email: email, DisplayName: displayName, AuthProvider: models.AuthProviderGoogle}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID string, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) ClearRefreshTokenHash(userID string) error {
	if m.clearRefreshTokenHashFn != nil {
		return m.clearRefreshTokenHashFn(userID)
	}
	return nil
}

type mockTransactionService struct {
	getTransactionsPageFn func(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID string, in services.CreateTransactionInput) (*models.Transaction, error) {
	return &models.Transaction{UserID: userID, Type: in.Type}, nil
}

func (m *mockTransactionService) ListTransactions(_ context.Context, _ string) ([]models.Transaction, error) {
	return nil, nil
}

func (m *mockTransactionService) GetTransactionsPage(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsPageFn != nil {
		return m.getTransactionsPageFn(ctx, userID, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse[models.Transaction](nil, page.Page, page.PageSize, 0)
	return &resp, nil
}

type mockDashboardService struct {
	refreshFn        func(ctx context.Context, userID string) (*services.Dashboard, error)
	setBudgetFn      func(ctx context.Context, userID string, budget decimal.Decimal) (*services.Dashboard, error)
	dismissAlertFn   func(ctx context.Context, userID string) (bool, error)
	addTransactionFn func(ctx context.Context, userID string, in services.CreateTransactionInput) (*models.Transaction, *services.Dashboard, error)
	endSessionFn     func(userID string)
}

func (m *mockDashboardService) Refresh(ctx context.Context, userID string) (*services.Dashboard, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, userID)
	}
	return &services.Dashboard{}, nil
}

func (m *mockDashboardService) SetBudget(ctx context.Context, userID string, budget decimal.Decimal) (*services.Dashboard, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(ctx, userID, budget)
	}
	return &services.Dashboard{Budget: budget}, nil
}

func (m *mockDashboardService) DismissAlert(ctx context.Context, userID string) (bool, error) {
	if m.dismissAlertFn != nil {
		return m.dismissAlertFn(ctx, userID)
	}
	return false, nil
}

func (m *mockDashboardService) AddTransaction(ctx context.Context, userID string, in services.CreateTransactionInput) (*models.Transaction, *services.Dashboard, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(ctx, userID, in)
	}
	tx := &models.Transaction{
		Base:     models.Base{ID: "tx-1"},
		UserID:   userID,
		Type:     in.Type,
		Amount:   decimal.NewNullDecimal(in.Amount),
		Category: in.Category,
		Date:     in.Date,
	}
	return tx, &services.Dashboard{}, nil
}

func (m *mockDashboardService) EndSession(userID string) {
	if m.endSessionFn != nil {
		m.endSessionFn(userID)
	}
}

type mockExportService struct {
	historyTableFn func(ctx context.Context, userID string) ([]export.TableRow, error)
	exportCSVFn    func(ctx context.Context, userID string, w io.Writer) error
	exportPDFFn    func(ctx context.Context, userID string, w io.Writer) error
}

func (m *mockExportService) HistoryTable(ctx context.Context, userID string) ([]export.TableRow, error) {
	if m.historyTableFn != nil {
		return m.historyTableFn(ctx, userID)
	}
	return []export.TableRow{}, nil
}

func (m *mockExportService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	if m.exportCSVFn != nil {
		return m.exportCSVFn(ctx, userID, w)
	}
	return nil
}

func (m *mockExportService) ExportPDF(ctx context.Context, userID string, w io.Writer) error {
	if m.exportPDFFn != nil {
		return m.exportPDFFn(ctx, userID, w)
	}
	return nil
}

type mockGoogleAuthService struct {
	enabled    bool
	exchangeFn func(ctx context.Context, code string) (*services.GoogleProfile, error)
}

func (m *mockGoogleAuthService) Enabled() bool { return m.enabled }

func (m *mockGoogleAuthService) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (m *mockGoogleAuthService) Exchange(ctx context.Context, code string) (*services.GoogleProfile, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return &services.GoogleProfile{Email: "g@example.com", VerifiedEmail: true}, nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.action)
	}
	return out
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

const testUserID = "0190a5c4-7e21-7c3a-9c1d-4f2b8a6d3e10"

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
