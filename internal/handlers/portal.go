package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/internal/services"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
)

// PortalServiceInterface defines the back-office auth business logic
type PortalServiceInterface interface {
	Login(ctx context.Context, email, firebaseUID string, portal models.PortalType, rc services.RequestContext) (*models.Account, error)
	VerifySession(ctx context.Context, refID string, portal models.PortalType) (*models.Account, error)
	Logout(ctx context.Context, refID string, portal models.PortalType, rc services.RequestContext) error
}

// PortalHandler handles the admin / staff / operator portal endpoints
type PortalHandler struct {
	service  PortalServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(service PortalServiceInterface, ipConfig *pkghttp.IPConfig) *PortalHandler {
	return &PortalHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// PortalLoginRequest represents the request body for the generic portal login
type PortalLoginRequest struct {
	Email       string            `json:"email" validate:"required,email"`
	FirebaseUID string            `json:"firebase_uid" validate:"required"`
	PortalType  string            `json:"portal_type" validate:"required,oneof=admin staff operator"`
	IDToken     string            `json:"id_token,omitempty"`
	AuthMethod  string            `json:"auth_method,omitempty" validate:"omitempty,oneof=email_password google facebook apple phone"`
	Device      models.DeviceInfo `json:"device,omitempty"`
}

// portalCredentials is the shared body of the specialized per-portal logins,
// which carry the portal type in the path instead
type portalCredentials struct {
	Email       string            `json:"email" validate:"required,email"`
	FirebaseUID string            `json:"firebase_uid" validate:"required"`
	IDToken     string            `json:"id_token,omitempty"`
	AuthMethod  string            `json:"auth_method,omitempty" validate:"omitempty,oneof=email_password google facebook apple phone"`
	Device      models.DeviceInfo `json:"device,omitempty"`
}

// PortalLogoutRequest represents the request body for portal logout
type PortalLogoutRequest struct {
	RefID      string            `json:"ref_id" validate:"required"`
	PortalType string            `json:"portal_type" validate:"required,oneof=admin staff operator"`
	Device     models.DeviceInfo `json:"device,omitempty"`
}

// VerifySessionRequest represents the request body for session verification
type VerifySessionRequest struct {
	RefID      string `json:"ref_id" validate:"required"`
	PortalType string `json:"portal_type" validate:"required,oneof=admin staff operator"`
}

// PortalAccountResponse is the portal view of an account: public profile
// plus the role flags the client uses to build its navigation
type PortalAccountResponse struct {
	AccountResponse
	Portal string `json:"portal"`
}

// Login handles POST /portal/login
func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req PortalLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	// oneof validation above guarantees this parses
	portal, _ := models.ParsePortalType(req.PortalType)

	h.login(w, r, portal, portalCredentials{
		Email:       req.Email,
		FirebaseUID: req.FirebaseUID,
		IDToken:     req.IDToken,
		AuthMethod:  req.AuthMethod,
		Device:      req.Device,
	})
}

// AdminLogin handles POST /portal/admin/login
func (h *PortalHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.specializedLogin(w, r, models.PortalAdmin)
}

// StaffLogin handles POST /portal/staff/login
func (h *PortalHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	h.specializedLogin(w, r, models.PortalStaff)
}

// OperatorLogin handles POST /portal/operator/login
func (h *PortalHandler) OperatorLogin(w http.ResponseWriter, r *http.Request) {
	h.specializedLogin(w, r, models.PortalOperator)
}

func (h *PortalHandler) specializedLogin(w http.ResponseWriter, r *http.Request, portal models.PortalType) {
	var req portalCredentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	h.login(w, r, portal, req)
}

func (h *PortalHandler) login(w http.ResponseWriter, r *http.Request, portal models.PortalType, creds portalCredentials) {
	rc := h.requestContext(r, creds.AuthMethod, creds.IDToken, creds.Device)

	acct, err := h.service.Login(r.Context(), creds.Email, creds.FirebaseUID, portal, rc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Login successful", PortalAccountResponse{
		AccountResponse: newAccountResponse(acct),
		Portal:          portal.String(),
	})
}

// Logout handles POST /portal/logout
func (h *PortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req PortalLogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	portal, _ := models.ParsePortalType(req.PortalType)
	rc := h.requestContext(r, "", "", req.Device)

	if err := h.service.Logout(r.Context(), req.RefID, portal, rc); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}

// VerifySession handles POST /portal/verify-session. Any failure is a plain
// 401; the probe never explains which check failed.
func (h *PortalHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	var req VerifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	portal, _ := models.ParsePortalType(req.PortalType)

	acct, err := h.service.VerifySession(r.Context(), req.RefID, portal)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Session valid", PortalAccountResponse{
		AccountResponse: newAccountResponse(acct),
		Portal:          portal.String(),
	})
}

func (h *PortalHandler) requestContext(r *http.Request, authMethod, idToken string, device models.DeviceInfo) services.RequestContext {
	meta := pkghttp.ExtractRequestMeta(r, h.ipConfig)
	return services.RequestContext{
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		AuthMethod: authMethod,
		IDToken:    idToken,
		Device:     device,
	}
}
