package refid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var refIDPattern = regexp.MustCompile(`^(USR|AUT)-\d{14}-[A-Z0-9]{3}$`)

func TestNewUserRefID_Format(t *testing.T) {
	id := NewUserRefID()
	assert.Regexp(t, refIDPattern, id)
	assert.Equal(t, "USR", id[:3])
}

func TestNewAuthRefID_Format(t *testing.T) {
	id := NewAuthRefID()
	assert.Regexp(t, refIDPattern, id)
	assert.Equal(t, "AUT", id[:3])
}

func TestNewReferralCode_Format(t *testing.T) {
	code := NewReferralCode()
	assert.Len(t, code, 8)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), code)
}

func TestNewReferralCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[NewReferralCode()] = true
	}
	// 50 draws from a 36^8 space should never collide down to one value
	assert.Greater(t, len(seen), 1)
}
