package services

import (
	"context"
	"encoding/json"

	"mybudget/internal/logger"
	"mybudget/internal/models"

	"gorm.io/gorm"
)

// auditService writes audit events to the audit_logs table.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record stores event. Failures are logged and swallowed.
func (s *auditService) Record(ctx context.Context, event AuditEvent) {
	log := logger.Named("audit")

	changes := ""
	if event.Changes != nil {
		data, err := json.Marshal(event.Changes)
		if err != nil {
			log.Errorw("failed to marshal audit changes", "error", err, "action", event.Action)
			data = []byte("{}")
		}
		changes = string(data)
	}

	entry := &models.AuditLog{
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		RequestID:    event.RequestID,
		Changes:      changes,
	}

	// Recorded even when the request context is already canceled.
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		log.Errorw("failed to create audit log entry",
			"error", err,
			"action", event.Action,
			"resource_type", event.ResourceType,
			"resource_id", event.ResourceID,
			"request_id", event.RequestID,
		)
	}
}
