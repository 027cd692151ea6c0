package services

import (
	"context"
	"log/slog"

	"github.com/exploria-travel/auth-service/internal/models"
	pkglogger "github.com/exploria-travel/auth-service/pkg/logger"
)

// AuthEventRepository defines the journal persistence interface
type AuthEventRepository interface {
	Create(ctx context.Context, event *models.AuthEvent) (*models.AuthEvent, error)
}

// JournalService appends auth events with dual-write semantics (slog +
// database). Persistence failures are reported to the operational log and
// swallowed; a failed journal write never fails the flow that produced it.
type JournalService struct {
	repo        AuthEventRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewJournalService creates a new JournalService
func NewJournalService(repo AuthEventRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *JournalService {
	return &JournalService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Record appends one journal entry for an authentication attempt. It runs
// synchronously so the write is always attempted before the request
// completes, but its outcome never reaches the caller.
func (s *JournalService) Record(ctx context.Context, event *models.AuthEvent) {
	// Immediate operational-log write, so the attempt is visible even when
	// the database insert below fails
	logEvent := pkglogger.AuditEvent{
		EventType: event.EventType,
		UserRefID: event.UserRefID,
		Success:   event.Success,
	}
	if event.PortalType != nil {
		logEvent.PortalType = *event.PortalType
	}
	if event.IPAddress != nil {
		logEvent.IPAddress = *event.IPAddress
	}
	if event.UserAgent != nil {
		logEvent.UserAgent = *event.UserAgent
	}
	if event.FailureReason != nil {
		logEvent.FailureReason = *event.FailureReason
	}
	s.auditLogger.LogAuthAttempt(logEvent)

	if _, err := s.repo.Create(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist auth event",
			slog.String("event_type", event.EventType),
			slog.String("user_refid", event.UserRefID),
			slog.Any("error", err),
		)
	}
}
