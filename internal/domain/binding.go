package domain

import "time"

// ThreadBinding maps a caller-supplied session to a remote assistant
// thread. Exactly one binding exists per session; it is upserted on
// every thread creation and never deleted by the service (expiry is
// backend policy).
type ThreadBinding struct {
	SessionID string
	ThreadID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
