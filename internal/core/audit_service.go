package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// sideEffects runs the best-effort work that follows a committed write.
// Failures are logged and never change the outcome of the request.
type sideEffects struct {
	audit  AuditService
	events EventPublisher
	logger *zap.Logger
}

func (e sideEffects) record(ctx context.Context, entry models.AuditLog) {
	if e.audit == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := e.audit.CreateAuditLog(ctx, entry); err != nil {
		e.logger.Warn("Failed to create audit log",
			zap.String("action", entry.Action),
			zap.String("target_id", entry.TargetID),
			zap.Error(err))
	}
}

func (e sideEffects) publish(ctx context.Context, event models.Event) {
	if e.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}
