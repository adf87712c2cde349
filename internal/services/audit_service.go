package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pocketledger/internal/logger"
	"pocketledger/internal/models"
)

// Audit actions.
const (
	AuditActionRegister          = "register"
	AuditActionLogin             = "login"
	AuditActionLogout            = "logout"
	AuditActionCreateTransaction = "create_transaction"
	AuditActionSetBudget         = "set_budget"
	AuditActionExport            = "export"
)

const auditWriteTimeout = 2 * time.Second

type auditService struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	timeout time.Duration
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db, log: logger.Get().Named("audit"), timeout: auditWriteTimeout}
}

// Log records an audit event. It runs after the user-facing operation has
// succeeded, so failures are logged and never returned. The write gets its
// own deadline and does not inherit the request's cancellation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      s.encodeChanges(action, changes),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.log.Errorw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
		return
	}
	s.log.Debugw("audit", "user_id", userID, "action", action, "resource_id", resourceID)
}

func (s *auditService) encodeChanges(action string, changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		s.log.Errorw("failed to marshal audit changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
