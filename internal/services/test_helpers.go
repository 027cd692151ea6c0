package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/exploria-travel/auth-service/internal/idp"
	"github.com/exploria-travel/auth-service/internal/models"
	pkglogger "github.com/exploria-travel/auth-service/pkg/logger"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc                   func(ctx context.Context, acct *models.Account) (*models.Account, error)
	GetByRefIDFunc               func(ctx context.Context, refID string) (*models.Account, error)
	GetByEmailFunc               func(ctx context.Context, email string) (*models.Account, error)
	GetByFirebaseUIDFunc         func(ctx context.Context, firebaseUID string) (*models.Account, error)
	GetByEmailAndFirebaseUIDFunc func(ctx context.Context, email, firebaseUID string) (*models.Account, error)
	CompleteProfileFunc          func(ctx context.Context, refID string, profile *models.ProfileUpdate) (*models.Account, error)
	RecordLoginFunc              func(ctx context.Context, refID string, booking *models.LoginBookkeeping) error
	UpdateLocationFunc           func(ctx context.Context, refID string, longitude, latitude float64) error
}

func (m *MockAccountRepository) Create(ctx context.Context, acct *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, acct)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) GetByRefID(ctx context.Context, refID string) (*models.Account, error) {
	if m.GetByRefIDFunc != nil {
		return m.GetByRefIDFunc(ctx, refID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Account, error) {
	if m.GetByFirebaseUIDFunc != nil {
		return m.GetByFirebaseUIDFunc(ctx, firebaseUID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmailAndFirebaseUID(ctx context.Context, email, firebaseUID string) (*models.Account, error) {
	if m.GetByEmailAndFirebaseUIDFunc != nil {
		return m.GetByEmailAndFirebaseUIDFunc(ctx, email, firebaseUID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) CompleteProfile(ctx context.Context, refID string, profile *models.ProfileUpdate) (*models.Account, error) {
	if m.CompleteProfileFunc != nil {
		return m.CompleteProfileFunc(ctx, refID, profile)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) RecordLogin(ctx context.Context, refID string, booking *models.LoginBookkeeping) error {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, refID, booking)
	}
	return nil
}

func (m *MockAccountRepository) UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error {
	if m.UpdateLocationFunc != nil {
		return m.UpdateLocationFunc(ctx, refID, longitude, latitude)
	}
	return nil
}

// MockJournal implements Journal for testing. It records every event so
// tests can assert on journaling behavior.
type MockJournal struct {
	RecordFunc func(ctx context.Context, event *models.AuthEvent)
	Events     []*models.AuthEvent
}

func (m *MockJournal) Record(ctx context.Context, event *models.AuthEvent) {
	m.Events = append(m.Events, event)
	if m.RecordFunc != nil {
		m.RecordFunc(ctx, event)
	}
}

// Last returns the most recently recorded event, or nil.
func (m *MockJournal) Last() *models.AuthEvent {
	if len(m.Events) == 0 {
		return nil
	}
	return m.Events[len(m.Events)-1]
}

// MockAuthEventRepository implements AuthEventRepository for testing
type MockAuthEventRepository struct {
	CreateFunc    func(ctx context.Context, event *models.AuthEvent) (*models.AuthEvent, error)
	CreatedEvents []*models.AuthEvent
}

func (m *MockAuthEventRepository) Create(ctx context.Context, event *models.AuthEvent) (*models.AuthEvent, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.CreatedEvents = append(m.CreatedEvents, event)
	return event, nil
}

// MockTokenVerifier implements TokenVerifier for testing
type MockTokenVerifier struct {
	VerifyFunc func(idToken string) (*idp.Identity, error)
}

func (m *MockTokenVerifier) Verify(idToken string) (*idp.Identity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(idToken)
	}
	return nil, models.ErrUnauthorized
}

// testLogger returns a logger that discards output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAuditLogger returns an audit logger over a discarding handler
func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

// NewTestAccount creates a confirmed active end-user account
func NewTestAccount(refID, firebaseUID, email string) *models.Account {
	now := time.Now()
	displayName := "Test User"
	firstname := "Test"
	lastname := "User"
	return &models.Account{
		RefID:             refID,
		FirebaseUID:       firebaseUID,
		Email:             email,
		EmailVerified:     true,
		DisplayName:       &displayName,
		Firstname:         &firstname,
		Lastname:          &lastname,
		Confirmed:         true,
		AccountStatus:     models.AccountStatusActive,
		ReferralCode:      "TESTCODE",
		PreferredLanguage: "en",
		PreferredCurrency: "USD",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewTestAccountUnconfirmed creates a freshly registered account that has
// not completed its profile
func NewTestAccountUnconfirmed(refID, firebaseUID, email string) *models.Account {
	acct := NewTestAccount(refID, firebaseUID, email)
	acct.Confirmed = false
	acct.DisplayName = nil
	acct.Firstname = nil
	acct.Lastname = nil
	return acct
}

// NewTestAccountWithStatus creates a confirmed account with the given status
func NewTestAccountWithStatus(refID, firebaseUID, email, status string) *models.Account {
	acct := NewTestAccount(refID, firebaseUID, email)
	acct.AccountStatus = status
	return acct
}

// NewTestAccountWithRoles creates a confirmed account with role flags set
func NewTestAccountWithRoles(refID, firebaseUID, email string, admin, staff, operator bool) *models.Account {
	acct := NewTestAccount(refID, firebaseUID, email)
	acct.IsAdmin = admin
	acct.IsStaff = staff
	acct.IsOperator = operator
	return acct
}
