package models

import (
	"time"
)

// Account statuses
const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusDisabled  = "disabled"
)

// Account is an internal user account linked 1:1 to a Firebase identity.
// Profile fields stay nil until the profile-completion flow runs; once
// Confirmed is true they are all populated and Confirmed never goes back.
type Account struct {
	RefID       string // USR-DDMMYYYYHHMMSS-XXX, immutable
	FirebaseUID string // set once at registration, never reassigned
	Email       string

	EmailVerified   bool
	DisplayName     *string
	ProfilePhotoURL *string

	// Profile fields, written at completion
	Firstname         *string
	Lastname          *string
	Birthday          *time.Time
	Gender            *string
	MobileNumber      *string
	MobileCountryCode *string
	Nationality       *string
	HomeCountry       *string
	HomeCity          *string
	PreferredLanguage string
	PreferredCurrency string

	Confirmed  bool
	IsAdmin    bool
	IsStaff    bool
	IsOperator bool

	AccountStatus      string
	ReferralCode       string
	RegistrationSource string
	MemberTier         *string
	LoyaltyPoints      int

	LastLoginAt     *time.Time
	LastLoginIP     *string
	LastLoginDevice *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the role flag for the given portal type is set.
func (a *Account) HasRole(portal PortalType) bool {
	switch portal {
	case PortalAdmin:
		return a.IsAdmin
	case PortalStaff:
		return a.IsStaff
	case PortalOperator:
		return a.IsOperator
	default:
		return false
	}
}

// LoginBookkeeping is the per-login metadata written onto the account.
type LoginBookkeeping struct {
	IPAddress  string
	DeviceType string
	At         time.Time
}

// ProfileUpdate carries the fields written by the profile-completion flow.
// Required fields are validated at the handler; the repository writes them
// atomically with the confirmed flip.
type ProfileUpdate struct {
	Firstname   string
	Lastname    string
	DisplayName string
	Birthday    time.Time
	Gender      string

	MobileNumber      *string
	MobileCountryCode *string
	Nationality       *string
	HomeCountry       *string
	HomeCity          *string

	PreferredLanguage string
	PreferredCurrency string
}
