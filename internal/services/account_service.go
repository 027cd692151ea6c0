package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/exploria-travel/auth-service/internal/idp"
	"github.com/exploria-travel/auth-service/internal/models"
	pkglogger "github.com/exploria-travel/auth-service/pkg/logger"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, acct *models.Account) (*models.Account, error)
	GetByRefID(ctx context.Context, refID string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Account, error)
	GetByEmailAndFirebaseUID(ctx context.Context, email, firebaseUID string) (*models.Account, error)
	CompleteProfile(ctx context.Context, refID string, profile *models.ProfileUpdate) (*models.Account, error)
	RecordLogin(ctx context.Context, refID string, booking *models.LoginBookkeeping) error
	UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error
}

// Journal defines the fire-and-forget journal interface
type Journal interface {
	Record(ctx context.Context, event *models.AuthEvent)
}

// TokenVerifier validates Firebase ID tokens
type TokenVerifier interface {
	Verify(idToken string) (*idp.Identity, error)
}

// RequestContext carries the per-request client metadata the auth flows
// record. All fields are optional.
type RequestContext struct {
	IPAddress  string
	UserAgent  string
	AuthMethod string
	IDToken    string
	Device     models.DeviceInfo
}

func (rc *RequestContext) authMethod() string {
	if rc.AuthMethod == "" {
		return models.AuthMethodEmailPassword
	}
	return rc.AuthMethod
}

// AccountService handles the registration / profile-completion flow and the
// end-user (non-portal) auth endpoints.
type AccountService struct {
	repo     AccountRepository
	journal  Journal
	verifier TokenVerifier // nil disables ID-token verification
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

// NewAccountService creates a new AccountService
func NewAccountService(repo AccountRepository, journal Journal, verifier TokenVerifier, logger *slog.Logger, audit *pkglogger.AuditLogger) *AccountService {
	return &AccountService{
		repo:     repo,
		journal:  journal,
		verifier: verifier,
		logger:   logger,
		audit:    audit,
	}
}

// RegisterInput is what the registration flow needs from the client.
type RegisterInput struct {
	FirebaseUID     string
	Email           string
	EmailVerified   bool
	DisplayName     *string
	ProfilePhotoURL *string
}

// RegisterResult is the successful registration outcome.
type RegisterResult struct {
	Account                   *models.Account
	RequiresProfileCompletion bool
}

// Register creates an unconfirmed account for a Firebase identity. Duplicate
// firebase_uid or email returns a DuplicateAccountError identifying the
// existing account; the database unique constraints are the final arbiter
// when two registrations race past the pre-checks.
func (s *AccountService) Register(ctx context.Context, input RegisterInput, rc RequestContext) (*RegisterResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.checkIDToken(rc, input.FirebaseUID); err != nil {
		return nil, err
	}

	// Pre-checks: fast path for the common duplicate cases
	if existing, err := s.repo.GetByFirebaseUID(ctx, input.FirebaseUID); err == nil {
		return nil, &models.DuplicateAccountError{Field: "firebase_uid", RefID: existing.RefID, Confirmed: existing.Confirmed}
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check firebase uid", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if existing, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, &models.DuplicateAccountError{Field: "email", RefID: existing.RefID, Confirmed: existing.Confirmed}
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	acct := &models.Account{
		FirebaseUID:     input.FirebaseUID,
		Email:           input.Email,
		EmailVerified:   input.EmailVerified,
		DisplayName:     input.DisplayName,
		ProfilePhotoURL: input.ProfilePhotoURL,
		Confirmed:       false,
		AccountStatus:   models.AccountStatusActive,
	}
	if rc.Device.DeviceType != "" {
		acct.RegistrationSource = rc.Device.DeviceType
	}
	// Registration stamps last-login bookkeeping even though no session
	// exists yet; clients read it as "last seen"
	acct.LastLoginAt = &now
	if rc.IPAddress != "" {
		acct.LastLoginIP = &rc.IPAddress
	}
	if rc.Device.DeviceType != "" {
		acct.LastLoginDevice = &rc.Device.DeviceType
	}

	created, err := s.repo.Create(ctx, acct)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost the race to a concurrent registration; report whichever
			// unique key the winner holds
			if existing, lookupErr := s.repo.GetByFirebaseUID(ctx, input.FirebaseUID); lookupErr == nil {
				return nil, &models.DuplicateAccountError{Field: "firebase_uid", RefID: existing.RefID, Confirmed: existing.Confirmed}
			}
			if existing, lookupErr := s.repo.GetByEmail(ctx, input.Email); lookupErr == nil {
				return nil, &models.DuplicateAccountError{Field: "email", RefID: existing.RefID, Confirmed: existing.Confirmed}
			}
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.journal.Record(ctx, newAuthEvent(created.RefID, &created.FirebaseUID, models.AuthEventTypeLogin, nil, true, "", rc, models.EventMetadata{"is_new_device": true}))

	s.logger.Info("account registered",
		slog.String("user_refid", created.RefID),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)),
	)

	return &RegisterResult{Account: created, RequiresProfileCompletion: true}, nil
}

// CompleteProfileInput is the required + optional profile payload.
type CompleteProfileInput struct {
	Firstname         string
	Lastname          string
	Birthday          time.Time
	Gender            string
	MobileNumber      *string
	MobileCountryCode *string
	Nationality       *string
	HomeCountry       *string
	HomeCity          *string
	PreferredLanguage string
	PreferredCurrency string
}

// CompleteProfile writes the mandatory profile fields and confirms the
// account. Strictly single-shot: a second call returns ErrAlreadyConfirmed
// and leaves the profile untouched.
func (s *AccountService) CompleteProfile(ctx context.Context, refID string, input CompleteProfileInput) (*models.Account, error) {
	profile := &models.ProfileUpdate{
		Firstname:         input.Firstname,
		Lastname:          input.Lastname,
		DisplayName:       input.Firstname + " " + input.Lastname,
		Birthday:          input.Birthday,
		Gender:            input.Gender,
		MobileNumber:      input.MobileNumber,
		MobileCountryCode: input.MobileCountryCode,
		Nationality:       input.Nationality,
		HomeCountry:       input.HomeCountry,
		HomeCity:          input.HomeCity,
		PreferredLanguage: input.PreferredLanguage,
		PreferredCurrency: input.PreferredCurrency,
	}
	if profile.PreferredLanguage == "" {
		profile.PreferredLanguage = "en"
	}
	if profile.PreferredCurrency == "" {
		profile.PreferredCurrency = "USD"
	}

	updated, err := s.repo.CompleteProfile(ctx, refID, profile)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrAlreadyConfirmed):
			return nil, err
		default:
			s.logger.Error("failed to complete profile", slog.String("user_refid", refID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	s.audit.LogAccountAction("profile_completed", refID, "", nil)

	return updated, nil
}

// Login authenticates an end user. Unlike portal login there is no role or
// confirmation gate; only the (email, firebase_uid) pair and account status
// are checked.
func (s *AccountService) Login(ctx context.Context, email, firebaseUID string, rc RequestContext) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.checkIDToken(rc, firebaseUID); err != nil {
		return nil, err
	}

	acct, err := s.repo.GetByEmailAndFirebaseUID(ctx, email, firebaseUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// No account to reference; journal against the firebase uid
			s.journal.Record(ctx, newAuthEvent(firebaseUID, &firebaseUID, models.AuthEventTypeLogin, nil, false, "account_not_found", rc, nil))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if acct.AccountStatus != models.AccountStatusActive {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, nil, false, "account_"+acct.AccountStatus, rc, nil))
		return nil, &models.AccountNotActiveError{Status: acct.AccountStatus}
	}

	if err := s.recordBookkeeping(ctx, acct, rc); err != nil {
		s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, nil, false, "login_update_failed", rc, nil))
		return nil, models.ErrInternalServer
	}

	s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogin, nil, true, "", rc, nil))

	return acct, nil
}

// CheckEmail reports whether an account exists for the email.
func (s *AccountService) CheckEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	acct, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return acct, nil
}

// GetProfile returns the full profile for a ref id.
func (s *AccountService) GetProfile(ctx context.Context, refID string) (*models.Account, error) {
	acct, err := s.repo.GetByRefID(ctx, refID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get profile", slog.String("user_refid", refID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return acct, nil
}

// UpdateLocation writes the account's live GPS point.
func (s *AccountService) UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error {
	if err := s.repo.UpdateLocation(ctx, refID, longitude, latitude); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update location", slog.String("user_refid", refID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAccountAction("location_updated", refID, "", nil)
	return nil
}

// Logout journals a logout event. There is no server-side session to
// invalidate; the account just has to exist.
func (s *AccountService) Logout(ctx context.Context, refID string, rc RequestContext) error {
	acct, err := s.repo.GetByRefID(ctx, refID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up account for logout", slog.String("user_refid", refID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.journal.Record(ctx, newAuthEvent(acct.RefID, &acct.FirebaseUID, models.AuthEventTypeLogout, nil, true, "", rc, nil))
	return nil
}

// checkIDToken cross-checks an optional client-supplied ID token against the
// claimed firebase uid. Absent token or absent verifier preserves the
// original trust model.
func (s *AccountService) checkIDToken(rc RequestContext, firebaseUID string) error {
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

func (s *AccountService) recordBookkeeping(ctx context.Context, acct *models.Account, rc RequestContext) error {
	booking := &models.LoginBookkeeping{
		IPAddress:  rc.IPAddress,
		DeviceType: rc.Device.DeviceType,
		At:         time.Now(),
	}
	if booking.DeviceType == "" {
		booking.DeviceType = "web"
	}

	if err := s.repo.RecordLogin(ctx, acct.RefID, booking); err != nil {
		s.logger.Error("failed to record login bookkeeping",
			slog.String("user_refid", acct.RefID), slog.Any("error", err))
		return err
	}
	return nil
}

// newAuthEvent assembles a journal entry from request context. Shared with
// PortalService.
func newAuthEvent(userRefID string, firebaseUID *string, eventType string, portal *string, success bool, failureReason string, rc RequestContext, metadata models.EventMetadata) *models.AuthEvent {
	event := &models.AuthEvent{
		UserRefID:   userRefID,
		FirebaseUID: firebaseUID,
		EventType:   eventType,
		AuthMethod:  rc.authMethod(),
		PortalType:  portal,
		Success:     success,
		Metadata:    metadata,
	}

	if failureReason != "" {
		event.FailureReason = &failureReason
	}
	if rc.IPAddress != "" {
		event.IPAddress = &rc.IPAddress
	}
	if rc.UserAgent != "" {
		event.UserAgent = &rc.UserAgent
	}
	if rc.Device.DeviceType != "" {
		event.DeviceType = &rc.Device.DeviceType
	}
	if rc.Device.DeviceModel != "" {
		event.DeviceModel = &rc.Device.DeviceModel
	}
	if rc.Device.OSVersion != "" {
		event.OSVersion = &rc.Device.OSVersion
	}
	if rc.Device.AppVersion != "" {
		event.AppVersion = &rc.Device.AppVersion
	}
	if rc.Device.Browser != "" {
		event.Browser = &rc.Device.Browser
	}

	return event
}
