package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exploria-travel/auth-service/internal/handlers"
	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Created(t *testing.T) {
	mock := &handlers.MockAccountService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput, rc services.RequestContext) (*services.RegisterResult, error) {
			acct := handlers.NewTestAccount("USR-01012025000000-ABC", input.FirebaseUID, input.Email)
			acct.Confirmed = false
			return &services.RegisterResult{Account: acct, RequiresProfileCompletion: true}, nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		FirebaseUID: "fb-uid-1",
		Email:       "user@example.com",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	env := handlers.DecodeEnvelope(t, w, 201)
	assert.True(t, env.Success)

	var data handlers.RegisterResponse
	handlers.EnvelopeData(t, env, &data)
	assert.Equal(t, "USR-01012025000000-ABC", data.RefID)
	assert.Equal(t, "TESTCODE", data.ReferralCode)
	assert.True(t, data.RequiresProfileCompletion)
}

func TestRegister_ValidationFailure(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email: "not-an-email",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	env := handlers.DecodeEnvelope(t, w, 422)
	assert.False(t, env.Success)
	assert.NotNil(t, env.Errors)
}

func TestRegister_DuplicateReturnsOriginalRefID(t *testing.T) {
	mock := &handlers.MockAccountService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput, rc services.RequestContext) (*services.RegisterResult, error) {
			return nil, &models.DuplicateAccountError{Field: "firebase_uid", RefID: "USR-ORIGINAL", Confirmed: false}
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		FirebaseUID: "fb-uid-1",
		Email:       "user@example.com",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	env := handlers.DecodeEnvelope(t, w, 409)
	assert.False(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "USR-ORIGINAL", data["ref_id"])
	assert.Equal(t, true, data["requires_profile_completion"])
}

func TestRegister_InvalidBody(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := httptest.NewRequest("POST", "/auth/register", nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)

	env := handlers.DecodeEnvelope(t, w, 400)
	assert.False(t, env.Success)
}

func TestCheckEmail_Exists(t *testing.T) {
	mock := &handlers.MockAccountService{
		CheckEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return handlers.NewTestAccount("USR-1", "fb-uid-1", email), nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/check-email", handlers.CheckEmailRequest{Email: "user@example.com"})
	w := httptest.NewRecorder()
	handler.CheckEmail(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, true, data["exists"])
	assert.Equal(t, "USR-1", data["ref_id"])
	assert.Equal(t, true, data["confirmed"])
}

func TestCheckEmail_Available(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/check-email", handlers.CheckEmailRequest{Email: "new@example.com"})
	w := httptest.NewRecorder()
	handler.CheckEmail(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, false, data["exists"])
}

func TestCompleteProfile_Success(t *testing.T) {
	var gotInput services.CompleteProfileInput
	mock := &handlers.MockAccountService{
		CompleteProfileFunc: func(ctx context.Context, refID string, input services.CompleteProfileInput) (*models.Account, error) {
			gotInput = input
			acct := handlers.NewTestAccount(refID, "fb-uid-1", "user@example.com")
			firstname := input.Firstname
			lastname := input.Lastname
			acct.Firstname = &firstname
			acct.Lastname = &lastname
			return acct, nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/complete-profile", handlers.CompleteProfileRequest{
		RefID:     "USR-1",
		Firstname: "Ana",
		Lastname:  "Silva",
		Birthday:  "1990-04-12",
		Gender:    "female",
	})
	w := httptest.NewRecorder()
	handler.CompleteProfile(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)
	assert.Equal(t, time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC), gotInput.Birthday)
}

func TestCompleteProfile_MalformedBirthday(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/complete-profile", handlers.CompleteProfileRequest{
		RefID:     "USR-1",
		Firstname: "Ana",
		Lastname:  "Silva",
		Birthday:  "12/04/1990",
		Gender:    "female",
	})
	w := httptest.NewRecorder()
	handler.CompleteProfile(w, req)

	handlers.DecodeEnvelope(t, w, 422)
}

func TestCompleteProfile_AlreadyConfirmed(t *testing.T) {
	mock := &handlers.MockAccountService{
		CompleteProfileFunc: func(ctx context.Context, refID string, input services.CompleteProfileInput) (*models.Account, error) {
			return nil, models.ErrAlreadyConfirmed
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/complete-profile", handlers.CompleteProfileRequest{
		RefID:     "USR-1",
		Firstname: "Ana",
		Lastname:  "Silva",
		Birthday:  "1990-04-12",
		Gender:    "female",
	})
	w := httptest.NewRecorder()
	handler.CompleteProfile(w, req)

	env := handlers.DecodeEnvelope(t, w, 400)
	assert.False(t, env.Success)
	assert.Equal(t, "Profile has already been completed", env.Message)
}

func TestLogin_Success(t *testing.T) {
	mock := &handlers.MockAccountService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error) {
			return handlers.NewTestAccount("USR-1", firebaseUID, email), nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:       "user@example.com",
		FirebaseUID: "fb-uid-1",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)

	var data handlers.AccountResponse
	handlers.EnvelopeData(t, env, &data)
	assert.Equal(t, "USR-1", data.RefID)
	assert.Equal(t, "active", data.AccountStatus)
}

func TestLogin_NotFound(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:       "user@example.com",
		FirebaseUID: "fb-uid-1",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 404)
	assert.False(t, env.Success)
}

func TestLogin_SuspendedAccount(t *testing.T) {
	mock := &handlers.MockAccountService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error) {
			return nil, &models.AccountNotActiveError{Status: models.AccountStatusSuspended}
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:       "user@example.com",
		FirebaseUID: "fb-uid-1",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 403)
	assert.Equal(t, "Account is suspended", env.Message)
}

func TestLogin_InternalErrorNeverLeaksDetail(t *testing.T) {
	mock := &handlers.MockAccountService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error) {
			return nil, models.ErrInternalServer
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:       "user@example.com",
		FirebaseUID: "fb-uid-1",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 500)
	assert.Equal(t, "Something went wrong", env.Message)
	assert.Nil(t, env.Data)
}

func TestUpdateLocation_Success(t *testing.T) {
	var gotLon, gotLat float64
	mock := &handlers.MockAccountService{
		UpdateLocationFunc: func(ctx context.Context, refID string, longitude, latitude float64) error {
			gotLon, gotLat = longitude, latitude
			return nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/update-location", handlers.UpdateLocationRequest{
		RefID:     "USR-1",
		Longitude: 100.5018,
		Latitude:  13.7563,
	})
	w := httptest.NewRecorder()
	handler.UpdateLocation(w, req)

	handlers.DecodeEnvelope(t, w, 200)
	assert.Equal(t, 100.5018, gotLon)
	assert.Equal(t, 13.7563, gotLat)
}

func TestUpdateLocation_OutOfRange(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/update-location", handlers.UpdateLocationRequest{
		RefID:     "USR-1",
		Longitude: 200,
		Latitude:  13.7563,
	})
	w := httptest.NewRecorder()
	handler.UpdateLocation(w, req)

	handlers.DecodeEnvelope(t, w, 422)
}

func TestLogout_Success(t *testing.T) {
	mock := &handlers.MockAccountService{
		LogoutFunc: func(ctx context.Context, refID string, rc services.RequestContext) error {
			return nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/auth/logout", handlers.LogoutRequest{RefID: "USR-1"})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)
}

func TestGetProfile_Success(t *testing.T) {
	mock := &handlers.MockAccountService{
		GetProfileFunc: func(ctx context.Context, refID string) (*models.Account, error) {
			return handlers.NewTestAccount(refID, "fb-uid-1", "user@example.com"), nil
		},
	}
	handler := handlers.NewAuthHandler(mock, nil)

	router := chi.NewRouter()
	router.Get("/auth/profile/{ref_id}", handler.GetProfile)

	req := httptest.NewRequest("GET", "/auth/profile/USR-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	var data handlers.AccountResponse
	handlers.EnvelopeData(t, env, &data)
	assert.Equal(t, "USR-1", data.RefID)
}

func TestGetProfile_NotFound(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAccountService{}, nil)

	router := chi.NewRouter()
	router.Get("/auth/profile/{ref_id}", handler.GetProfile)

	req := httptest.NewRequest("GET", "/auth/profile/USR-MISSING", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	handlers.DecodeEnvelope(t, w, 404)
}
