// Package threadstore persists session→thread bindings so a session
// keeps using the same remote thread across turns and restarts.
package threadstore

import "context"

// Store is the binding persistence capability. Implementations report
// backend failures honestly; the orchestrator decides how to absorb
// them (a failed Get costs a new remote thread, never correctness).
type Store interface {
	// Get returns the thread id bound to the session, or
	// domain.ErrBindingNotFound when no binding exists.
	Get(ctx context.Context, sessionID string) (string, error)
	// Put upserts the binding for the session.
	Put(ctx context.Context, sessionID, threadID string) error
}
