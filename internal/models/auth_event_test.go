package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEventMetadata_ScanNil(t *testing.T) {
	var em EventMetadata
	if err := em.Scan(nil); err != nil {
		t.Fatalf("unexpected error scanning nil: %v", err)
	}
	if em == nil {
		t.Error("expected empty metadata map, got nil")
	}
	if len(em) != 0 {
		t.Errorf("expected empty metadata, got %v", em)
	}
}

func TestEventMetadata_ScanJSONB(t *testing.T) {
	var em EventMetadata
	err := em.Scan([]byte(`{"is_new_device": true, "city": "Bangkok"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if em["is_new_device"] != true {
		t.Errorf("expected is_new_device=true, got %v", em["is_new_device"])
	}
	if em["city"] != "Bangkok" {
		t.Errorf("expected city=Bangkok, got %v", em["city"])
	}
}

func TestEventMetadata_ScanUnsupportedType(t *testing.T) {
	var em EventMetadata
	if err := em.Scan(42); err == nil {
		t.Error("expected error scanning a non-bytes value")
	}
}

func TestEventMetadata_ValueRoundTrip(t *testing.T) {
	original := EventMetadata{"is_new_device": true}

	val, err := original.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded EventMetadata
	if err := decoded.Scan(val.([]byte)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["is_new_device"] != true {
		t.Errorf("round trip lost data: %v", decoded)
	}
}

func TestEventMetadata_ValueNil(t *testing.T) {
	var em EventMetadata
	val, err := em.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil driver value for nil metadata, got %v", val)
	}
}

func TestEventMetadata_JSONMarshal(t *testing.T) {
	em := EventMetadata{"source": "web"}
	raw, err := json.Marshal(em)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"source":"web"}` {
		t.Errorf("unexpected JSON: %s", raw)
	}
}

func TestTypedErrors_UnwrapToSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&ProfileIncompleteError{RefID: "USR-1"}, ErrProfileIncomplete},
		{&AccountNotActiveError{Status: "suspended"}, ErrAccountNotActive},
		{&DuplicateAccountError{Field: "email", RefID: "USR-1"}, ErrConflict},
		{&RoleDeniedError{Portal: PortalAdmin}, ErrForbidden},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("expected %T to unwrap to %v", tt.err, tt.sentinel)
		}
	}
}

func TestRoleDeniedError_MessageNamesRole(t *testing.T) {
	err := &RoleDeniedError{Portal: PortalStaff}
	if err.Error() != "Staff privileges required" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
