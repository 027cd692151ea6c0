package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/exploria-travel/auth-service/internal/handlers"
	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortalLogin_Success(t *testing.T) {
	mock := &handlers.MockPortalService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error) {
			assert.Equal(t, models.PortalAdmin, portal)
			acct := handlers.NewTestAccount("USR-1", firebaseUID, email)
			acct.IsAdmin = true
			return acct, nil
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/login", handlers.PortalLoginRequest{
		Email:       "admin@example.com",
		FirebaseUID: "fb-uid-1",
		PortalType:  "admin",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "admin", data["portal"])
	assert.Equal(t, true, data["is_admin"])
}

func TestPortalLogin_InvalidPortalType(t *testing.T) {
	handler := handlers.NewPortalHandler(&handlers.MockPortalService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/login", handlers.PortalLoginRequest{
		Email:       "admin@example.com",
		FirebaseUID: "fb-uid-1",
		PortalType:  "superuser",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.DecodeEnvelope(t, w, 422)
}

func TestPortalLogin_UnconfirmedSurfacesRefID(t *testing.T) {
	mock := &handlers.MockPortalService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error) {
			return nil, &models.ProfileIncompleteError{RefID: "USR-UNCONFIRMED"}
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/login", handlers.PortalLoginRequest{
		Email:       "admin@example.com",
		FirebaseUID: "fb-uid-1",
		PortalType:  "admin",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 403)
	assert.False(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["requires_profile_completion"])
	assert.Equal(t, "USR-UNCONFIRMED", data["ref_id"])
}

func TestPortalLogin_RoleDeniedMessage(t *testing.T) {
	mock := &handlers.MockPortalService{
		LoginFunc: func(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error) {
			return nil, &models.RoleDeniedError{Portal: portal}
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/login", handlers.PortalLoginRequest{
		Email:       "user@example.com",
		FirebaseUID: "fb-uid-1",
		PortalType:  "admin",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	env := handlers.DecodeEnvelope(t, w, 403)
	assert.Equal(t, "Administrator privileges required", env.Message)
}

func TestSpecializedLogins_CarryPortalFromPath(t *testing.T) {
	tests := []struct {
		name   string
		portal models.PortalType
	}{
		{name: "admin", portal: models.PortalAdmin},
		{name: "staff", portal: models.PortalStaff},
		{name: "operator", portal: models.PortalOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPortal models.PortalType
			mock := &handlers.MockPortalService{
				LoginFunc: func(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error) {
					gotPortal = portal
					return handlers.NewTestAccount("USR-1", firebaseUID, email), nil
				},
			}
			handler := handlers.NewPortalHandler(mock, nil)

			body := map[string]string{
				"email":        "user@example.com",
				"firebase_uid": "fb-uid-1",
			}
			req := handlers.NewTestRequest(t, "POST", "/portal/"+tt.name+"/login", body)
			w := httptest.NewRecorder()

			switch tt.portal {
			case models.PortalAdmin:
				handler.AdminLogin(w, req)
			case models.PortalStaff:
				handler.StaffLogin(w, req)
			case models.PortalOperator:
				handler.OperatorLogin(w, req)
			}

			handlers.DecodeEnvelope(t, w, 200)
			assert.Equal(t, tt.portal, gotPortal)
		})
	}
}

func TestVerifySession_Valid(t *testing.T) {
	mock := &handlers.MockPortalService{
		VerifySessionFunc: func(ctx context.Context, refID string, portal models.PortalType) (*models.Account, error) {
			acct := handlers.NewTestAccount(refID, "fb-uid-1", "admin@example.com")
			acct.IsAdmin = true
			return acct, nil
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/verify-session", handlers.VerifySessionRequest{
		RefID:      "USR-1",
		PortalType: "admin",
	})
	w := httptest.NewRecorder()
	handler.VerifySession(w, req)

	env := handlers.DecodeEnvelope(t, w, 200)
	assert.True(t, env.Success)
}

func TestVerifySession_Invalid(t *testing.T) {
	handler := handlers.NewPortalHandler(&handlers.MockPortalService{}, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/verify-session", handlers.VerifySessionRequest{
		RefID:      "USR-1",
		PortalType: "admin",
	})
	w := httptest.NewRecorder()
	handler.VerifySession(w, req)

	env := handlers.DecodeEnvelope(t, w, 401)
	assert.False(t, env.Success)
	assert.Equal(t, "Unauthorized", env.Message)
}

func TestPortalLogout_Success(t *testing.T) {
	var gotPortal models.PortalType
	mock := &handlers.MockPortalService{
		LogoutFunc: func(ctx context.Context, refID string, portal models.PortalType, rc services.RequestContext) error {
			gotPortal = portal
			return nil
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/logout", handlers.PortalLogoutRequest{
		RefID:      "USR-1",
		PortalType: "staff",
	})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	handlers.DecodeEnvelope(t, w, 200)
	assert.Equal(t, models.PortalStaff, gotPortal)
}

func TestPortalLogout_UnknownAccount(t *testing.T) {
	mock := &handlers.MockPortalService{
		LogoutFunc: func(ctx context.Context, refID string, portal models.PortalType, rc services.RequestContext) error {
			return models.ErrNotFound
		},
	}
	handler := handlers.NewPortalHandler(mock, nil)

	req := handlers.NewTestRequest(t, "POST", "/portal/logout", handlers.PortalLogoutRequest{
		RefID:      "USR-MISSING",
		PortalType: "admin",
	})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	handlers.DecodeEnvelope(t, w, 404)
}
