package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/internal/services"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	RegisterFunc        func(ctx context.Context, input services.RegisterInput, rc services.RequestContext) (*services.RegisterResult, error)
	CompleteProfileFunc func(ctx context.Context, refID string, input services.CompleteProfileInput) (*models.Account, error)
	LoginFunc           func(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error)
	CheckEmailFunc      func(ctx context.Context, email string) (*models.Account, error)
	GetProfileFunc      func(ctx context.Context, refID string) (*models.Account, error)
	UpdateLocationFunc  func(ctx context.Context, refID string, longitude, latitude float64) error
	LogoutFunc          func(ctx context.Context, refID string, rc services.RequestContext) error
}

func (m *MockAccountService) Register(ctx context.Context, input services.RegisterInput, rc services.RequestContext) (*services.RegisterResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input, rc)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountService) CompleteProfile(ctx context.Context, refID string, input services.CompleteProfileInput) (*models.Account, error) {
	if m.CompleteProfileFunc != nil {
		return m.CompleteProfileFunc(ctx, refID, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountService) Login(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, firebaseUID, rc)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) CheckEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.CheckEmailFunc != nil {
		return m.CheckEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) GetProfile(ctx context.Context, refID string) (*models.Account, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, refID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountService) UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error {
	if m.UpdateLocationFunc != nil {
		return m.UpdateLocationFunc(ctx, refID, longitude, latitude)
	}
	return nil
}

func (m *MockAccountService) Logout(ctx context.Context, refID string, rc services.RequestContext) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refID, rc)
	}
	return nil
}

// MockPortalService implements PortalServiceInterface for testing
type MockPortalService struct {
	LoginFunc         func(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error)
	VerifySessionFunc func(ctx context.Context, refID string, portal models.PortalType) (*models.Account, error)
	LogoutFunc        func(ctx context.Context, refID string, portal models.PortalType, rc services.RequestContext) error
}

func (m *MockPortalService) Login(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, firebaseUID, portal, rc)
	}
	return nil, models.ErrNotFound
}

func (m *MockPortalService) VerifySession(ctx context.Context, refID string, portal models.PortalType) (*models.Account, error) {
	if m.VerifySessionFunc != nil {
		return m.VerifySessionFunc(ctx, refID, portal)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockPortalService) Logout(ctx context.Context, refID string, portal models.PortalType, rc services.RequestContext) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refID, portal, rc)
	}
	return nil
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeEnvelope asserts the status code and decodes the response envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) pkghttp.Envelope {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var env pkghttp.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

// EnvelopeData re-decodes the data payload of an envelope into target
func EnvelopeData(t *testing.T, env pkghttp.Envelope, target interface{}) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

// NewTestAccount creates a confirmed active account for handler tests
func NewTestAccount(refID, firebaseUID, email string) *models.Account {
	displayName := "Test User"
	return &models.Account{
		RefID:             refID,
		FirebaseUID:       firebaseUID,
		Email:             email,
		EmailVerified:     true,
		DisplayName:       &displayName,
		Confirmed:         true,
		AccountStatus:     models.AccountStatusActive,
		ReferralCode:      "TESTCODE",
		PreferredLanguage: "en",
		PreferredCurrency: "USD",
	}
}
