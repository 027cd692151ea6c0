package refid

import (
	"crypto/rand"
	"fmt"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewUserRefID generates a human-inspectable user reference id.
// Format: USR-DDMMYYYYHHMMSS-XXX
func NewUserRefID() string {
	return newRefID("USR")
}

// NewAuthRefID generates a reference id for a journal entry.
// Format: AUT-DDMMYYYYHHMMSS-XXX
func NewAuthRefID() string {
	return newRefID("AUT")
}

// NewReferralCode generates an 8-character referral code.
func NewReferralCode() string {
	return randomString(8)
}

func newRefID(prefix string) string {
	stamp := time.Now().Format("02012006150405")
	return fmt.Sprintf("%s-%s-%s", prefix, stamp, randomString(3))
}

// randomString draws n characters from the uppercase alphanumeric alphabet
// using crypto/rand.
func randomString(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process is in a bad state
		panic(fmt.Sprintf("refid: rand.Read failed: %v", err))
	}

	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}
