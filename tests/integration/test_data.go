package integration

import (
	"fmt"
	"time"
)

// TestIdentity generates unique test credentials using timestamp
func TestIdentity(suffix string) (firebaseUID, email string) {
	ts := time.Now().UnixNano()
	firebaseUID = fmt.Sprintf("fb-%d-%s", ts, suffix)
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	return
}
