package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/exploria-travel/auth-service/internal/models"
)

// PortalService handles back-office (admin / staff / operator) logins. Every
// portal flow runs the same staged checks in order: existence, confirmation,
// role flag, account status. The first failing stage decides the outcome, so
// a suspended admin hitting the staff portal is told about the missing role,
// not the suspension.
type PortalService struct {
	repo     AccountRepository
	journal  Journal
	verifier TokenVerifier // nil disables ID-token verification
	logger   *slog.Logger
}

// NewPortalService creates a new PortalService
func NewPortalService(repo AccountRepository, journal Journal, verifier TokenVerifier, logger *slog.Logger) *PortalService {
	return &PortalService{
		repo:     repo,
		journal:  journal,
		verifier: verifier,
		logger:   logger,
	}
}

// Login authenticates a back-office user for the given portal. Failures are
// journaled with a stage-specific reason; success updates the last-login
// bookkeeping and journals a portal-tagged login event.
func (s *PortalService) Login(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc RequestContext) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	portalName := string(portal)

	if err := s.checkIDToken(rc, firebaseUID); err != nil {
		return nil, err
	}

	acct, err := s.repo.GetByEmailAndFirebaseUID(ctx, email, firebaseUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.journal.Record(ctx, newAuthEvent(firebaseUID, &firebaseUID, models.AuthEventTypeLogin, &portalName, false, "account_not_found", rc, nil))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up portal account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !acct.Confirmed {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, &portalName, false, "profile_incomplete", rc, nil))
		return nil, &models.ProfileIncompleteError{RefID: acct.RefID}
	}

	if !acct.HasRole(portal) {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, &portalName, false, "role_denied", rc, nil))
		return nil, &models.RoleDeniedError{Portal: portal}
	}

	if acct.AccountStatus != models.AccountStatusActive {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, &portalName, false, "account_"+acct.AccountStatus, rc, nil))
		return nil, &models.AccountNotActiveError{Status: acct.AccountStatus}
	}

	if err := s.recordBookkeeping(ctx, acct, rc); err != nil {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, &portalName, false, "login_update_failed", rc, nil))
		return nil, models.ErrInternalServer
	}

	s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, &portalName, true, "", rc, nil))

	return acct, nil
}

// VerifySession re-checks that a ref id still holds a valid portal session:
// the account must exist, be confirmed, and carry the portal's role flag.
// Verification is a read-only probe; it never touches bookkeeping or the
// journal.
func (s *PortalService) VerifySession(ctx context.Context, refID string, portal models.PortalType) (*models.Account, error) {
	acct, err := s.repo.GetByRefID(ctx, refID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to verify portal session", slog.String("user_refid", refID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !acct.Confirmed || !acct.HasRole(portal) {
		return nil, models.ErrUnauthorized
	}

	return acct, nil
}

// Logout journals a portal logout. The account just has to exist.
func (s *PortalService) Logout(ctx context.Context, refID string, portal models.PortalType, rc RequestContext) error {
	acct, err := s.repo.GetByRefID(ctx, refID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up account for portal logout", slog.String("user_refid", refID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	portalName := string(portal)
	s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogout, &portalName, true, "", rc, nil))
	return nil
}

func (s *PortalService) checkIDToken(rc RequestContext, firebaseUID string) error {
	if rc.IDToken == "" || s.verifier == nil {
		return nil
	}

	identity, err := s.verifier.Verify(rc.IDToken)
	if err != nil {
		s.logger.Warn("id token verification failed", slog.Any("error", err))
		return models.ErrUnauthorized
	}
	if identity.UID != firebaseUID {
		s.logger.Warn("id token subject mismatch")
		return models.ErrUnauthorized
	}
	return nil
}

func (s *PortalService) recordBookkeeping(ctx context.Context, acct *models.Account, rc RequestContext) error {
	booking := &models.LoginBookkeeping{
		IPAddress:  rc.IPAddress,
		DeviceType: rc.Device.DeviceType,
		At:         time.Now(),
	}
	if booking.DeviceType == "" {
		booking.DeviceType = "web"
	}

	if err := s.repo.RecordLogin(ctx, acct.RefID, booking); err != nil {
		s.logger.Error("failed to record portal login bookkeeping",
			slog.String("user_refid", acct.RefID), slog.Any("error", err))
		return err
	}
	return nil
}
