package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/internal/services"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
)

// AccountServiceInterface defines the end-user auth business logic
type AccountServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput, rc services.RequestContext) (*services.RegisterResult, error)
	CompleteProfile(ctx context.Context, refID string, input services.CompleteProfileInput) (*models.Account, error)
	Login(ctx context.Context, email, firebaseUID string, rc services.RequestContext) (*models.Account, error)
	CheckEmail(ctx context.Context, email string) (*models.Account, error)
	GetProfile(ctx context.Context, refID string) (*models.Account, error)
	UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error
	Logout(ctx context.Context, refID string, rc services.RequestContext) error
}

// AuthHandler handles the end-user authentication endpoints
type AuthHandler struct {
	service  AccountServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AccountServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// CheckEmailRequest represents the request body for the email existence check
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FirebaseUID     string            `json:"firebase_uid" validate:"required"`
	Email           string            `json:"email" validate:"required,email"`
	EmailVerified   bool              `json:"email_verified"`
	DisplayName     *string           `json:"display_name,omitempty"`
	ProfilePhotoURL *string           `json:"profile_photo_url,omitempty"`
	IDToken         string            `json:"id_token,omitempty"`
	AuthMethod      string            `json:"auth_method,omitempty" validate:"omitempty,oneof=email_password google facebook apple phone"`
	Device          models.DeviceInfo `json:"device,omitempty"`
}

// CompleteProfileRequest represents the request body for profile completion
type CompleteProfileRequest struct {
	RefID             string  `json:"ref_id" validate:"required"`
	Firstname         string  `json:"firstname" validate:"required,min=1,max=100"`
	Lastname          string  `json:"lastname" validate:"required,min=1,max=100"`
	Birthday          string  `json:"birthday" validate:"required,datetime=2006-01-02"`
	Gender            string  `json:"gender" validate:"required,oneof=male female other"`
	MobileNumber      *string `json:"mobile_number,omitempty"`
	MobileCountryCode *string `json:"mobile_country_code,omitempty"`
	Nationality       *string `json:"nationality,omitempty"`
	HomeCountry       *string `json:"home_country,omitempty"`
	HomeCity          *string `json:"home_city,omitempty"`
	PreferredLanguage string  `json:"preferred_language,omitempty" validate:"omitempty,min=2,max=8"`
	PreferredCurrency string  `json:"preferred_currency,omitempty" validate:"omitempty,len=3"`
}

// LoginRequest represents the request body for the end-user login
type LoginRequest struct {
	Email       string            `json:"email" validate:"required,email"`
	FirebaseUID string            `json:"firebase_uid" validate:"required"`
	IDToken     string            `json:"id_token,omitempty"`
	AuthMethod  string            `json:"auth_method,omitempty" validate:"omitempty,oneof=email_password google facebook apple phone"`
	Device      models.DeviceInfo `json:"device,omitempty"`
}

// UpdateLocationRequest represents the request body for the GPS update
type UpdateLocationRequest struct {
	RefID     string  `json:"ref_id" validate:"required"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
}

// LogoutRequest represents the request body for the end-user logout
type LogoutRequest struct {
	RefID  string            `json:"ref_id" validate:"required"`
	Device models.DeviceInfo `json:"device,omitempty"`
}

// Response DTOs

// RegisterResponse is the data payload of a successful registration
type RegisterResponse struct {
	RefID                     string `json:"ref_id"`
	ReferralCode              string `json:"referral_code"`
	RequiresProfileCompletion bool   `json:"requires_profile_completion"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	RefID             string     `json:"ref_id"`
	Email             string     `json:"email"`
	EmailVerified     bool       `json:"email_verified"`
	DisplayName       *string    `json:"display_name,omitempty"`
	ProfilePhotoURL   *string    `json:"profile_photo_url,omitempty"`
	Firstname         *string    `json:"firstname,omitempty"`
	Lastname          *string    `json:"lastname,omitempty"`
	Birthday          *string    `json:"birthday,omitempty"`
	Gender            *string    `json:"gender,omitempty"`
	MobileNumber      *string    `json:"mobile_number,omitempty"`
	MobileCountryCode *string    `json:"mobile_country_code,omitempty"`
	Nationality       *string    `json:"nationality,omitempty"`
	HomeCountry       *string    `json:"home_country,omitempty"`
	HomeCity          *string    `json:"home_city,omitempty"`
	PreferredLanguage string     `json:"preferred_language"`
	PreferredCurrency string     `json:"preferred_currency"`
	Confirmed         bool       `json:"confirmed"`
	IsAdmin           bool       `json:"is_admin"`
	IsStaff           bool       `json:"is_staff"`
	IsOperator        bool       `json:"is_operator"`
	AccountStatus     string     `json:"account_status"`
	ReferralCode      string     `json:"referral_code"`
	MemberTier        *string    `json:"member_tier,omitempty"`
	LoyaltyPoints     int        `json:"loyalty_points"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newAccountResponse(acct *models.Account) AccountResponse {
	resp := AccountResponse{
		RefID:             acct.RefID,
		Email:             acct.Email,
		EmailVerified:     acct.EmailVerified,
		DisplayName:       acct.DisplayName,
		ProfilePhotoURL:   acct.ProfilePhotoURL,
		Firstname:         acct.Firstname,
		Lastname:          acct.Lastname,
		Gender:            acct.Gender,
		MobileNumber:      acct.MobileNumber,
		MobileCountryCode: acct.MobileCountryCode,
		Nationality:       acct.Nationality,
		HomeCountry:       acct.HomeCountry,
		HomeCity:          acct.HomeCity,
		PreferredLanguage: acct.PreferredLanguage,
		PreferredCurrency: acct.PreferredCurrency,
		Confirmed:         acct.Confirmed,
		IsAdmin:           acct.IsAdmin,
		IsStaff:           acct.IsStaff,
		IsOperator:        acct.IsOperator,
		AccountStatus:     acct.AccountStatus,
		ReferralCode:      acct.ReferralCode,
		MemberTier:        acct.MemberTier,
		LoyaltyPoints:     acct.LoyaltyPoints,
		LastLoginAt:       acct.LastLoginAt,
		CreatedAt:         acct.CreatedAt,
	}
	if acct.Birthday != nil {
		birthday := acct.Birthday.Format("2006-01-02")
		resp.Birthday = &birthday
	}
	return resp
}

// CheckEmail handles POST /auth/check-email
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	acct, err := h.service.CheckEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteSuccess(w, http.StatusOK, "Email is available", map[string]interface{}{
				"exists": false,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Email is already registered", map[string]interface{}{
		"exists":    true,
		"ref_id":    acct.RefID,
		"confirmed": acct.Confirmed,
	})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	rc := h.requestContext(r, req.AuthMethod, req.IDToken, req.Device)

	result, err := h.service.Register(r.Context(), services.RegisterInput{
		FirebaseUID:     req.FirebaseUID,
		Email:           req.Email,
		EmailVerified:   req.EmailVerified,
		DisplayName:     req.DisplayName,
		ProfilePhotoURL: req.ProfilePhotoURL,
	}, rc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Account registered", RegisterResponse{
		RefID:                     result.Account.RefID,
		ReferralCode:              result.Account.ReferralCode,
		RequiresProfileCompletion: result.RequiresProfileCompletion,
	})
}

// CompleteProfile handles POST /auth/complete-profile
func (h *AuthHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	// Format is guaranteed by the datetime validation above
	birthday, _ := time.Parse("2006-01-02", req.Birthday)

	acct, err := h.service.CompleteProfile(r.Context(), req.RefID, services.CompleteProfileInput{
		Firstname:         req.Firstname,
		Lastname:          req.Lastname,
		Birthday:          birthday,
		Gender:            req.Gender,
		MobileNumber:      req.MobileNumber,
		MobileCountryCode: req.MobileCountryCode,
		Nationality:       req.Nationality,
		HomeCountry:       req.HomeCountry,
		HomeCity:          req.HomeCity,
		PreferredLanguage: req.PreferredLanguage,
		PreferredCurrency: req.PreferredCurrency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile completed", newAccountResponse(acct))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	rc := h.requestContext(r, req.AuthMethod, req.IDToken, req.Device)

	acct, err := h.service.Login(r.Context(), req.Email, req.FirebaseUID, rc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Login successful", newAccountResponse(acct))
}

// UpdateLocation handles POST /auth/update-location
func (h *AuthHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	if err := h.service.UpdateLocation(r.Context(), req.RefID, req.Longitude, req.Latitude); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Location updated", nil)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := ValidateRequest(req); errs != nil {
		pkghttp.WriteValidationError(w, errs)
		return
	}

	rc := h.requestContext(r, "", "", req.Device)

	if err := h.service.Logout(r.Context(), req.RefID, rc); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}

// GetProfile handles GET /auth/profile/{ref_id}
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	refID := chi.URLParam(r, "ref_id")
	if refID == "" {
		pkghttp.WriteBadRequest(w, "Missing ref_id")
		return
	}

	acct, err := h.service.GetProfile(r.Context(), refID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile retrieved", newAccountResponse(acct))
}

func (h *AuthHandler) requestContext(r *http.Request, authMethod, idToken string, device models.DeviceInfo) services.RequestContext {
	meta := pkghttp.ExtractRequestMeta(r, h.ipConfig)
	return services.RequestContext{
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		AuthMethod: authMethod,
		IDToken:    idToken,
		Device:     device,
	}
}
