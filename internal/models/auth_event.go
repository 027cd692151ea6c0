package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types for the auth journal
const (
	AuthEventTypeLogin    = "login"
	AuthEventTypeLogout   = "logout"
	AuthEventTypeRegister = "register"
)

// Auth methods
const (
	AuthMethodEmailPassword = "email_password"
	AuthMethodGoogle        = "google"
	AuthMethodFacebook      = "facebook"
	AuthMethodApple         = "apple"
	AuthMethodPhone         = "phone"
)

// AuthEvent is an append-only journal entry for an authentication attempt.
// Only the user reference and event type are required; everything else is
// best-effort metadata. Entries are never mutated or deleted by the flows,
// only pruned by the retention task.
type AuthEvent struct {
	ID            uuid.UUID     `db:"id"`
	AuthRefID     string        `db:"auth_refid"` // AUT-DDMMYYYYHHMMSS-XXX
	UserRefID     string        `db:"user_refid"` // may carry a firebase uid when the account lookup failed
	FirebaseUID   *string       `db:"firebase_uid"`
	EventType     string        `db:"event_type"`
	AuthMethod    string        `db:"auth_method"`
	PortalType    *string       `db:"portal_type"`
	Success       bool          `db:"success"`
	FailureReason *string       `db:"failure_reason"`
	IPAddress     *string       `db:"ip_address"`
	UserAgent     *string       `db:"user_agent"`
	DeviceType    *string       `db:"device_type"`
	DeviceModel   *string       `db:"device_model"`
	OSVersion     *string       `db:"os_version"`
	AppVersion    *string       `db:"app_version"`
	Browser       *string       `db:"browser"`
	Metadata      EventMetadata `db:"metadata"`
	CreatedAt     time.Time     `db:"created_at"`
}

// EventMetadata holds additional journal context (geo hints, new-device
// flags) as JSONB.
type EventMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (em *EventMetadata) Scan(value interface{}) error {
	if value == nil {
		*em = make(EventMetadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*em = EventMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (em EventMetadata) Value() (driver.Value, error) {
	if em == nil {
		return nil, nil
	}
	return json.Marshal(em)
}

// MarshalJSON implements json.Marshaler
func (em EventMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(em))
}

// UnmarshalJSON implements json.Unmarshaler
func (em *EventMetadata) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*em = EventMetadata(m)
	return nil
}

// DeviceInfo is the optional client-supplied device fingerprint accepted by
// the auth endpoints.
type DeviceInfo struct {
	DeviceType  string `json:"device_type,omitempty"`
	DeviceModel string `json:"device_model,omitempty"`
	OSVersion   string `json:"os_version,omitempty"`
	AppVersion  string `json:"app_version,omitempty"`
	Browser     string `json:"browser,omitempty"`
}
