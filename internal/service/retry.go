package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/soothe-labs/advicebot/internal/assistant"
	"github.com/soothe-labs/advicebot/internal/domain"
)

// retryableStatus is the classification table for remote HTTP statuses.
// Rate limits and request timeouts are explicitly transient; extend the
// table to pin down further codes. Statuses not listed here fall
// through to transientStatus's defaults.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:  true,
	http.StatusTooManyRequests: true,
}

// transientStatus reports whether a remote status is worth retrying.
// Server errors are transient; any other client error is deterministic
// and retrying it would only repeat the failure.
func transientStatus(status int) bool {
	if retryable, ok := retryableStatus[status]; ok {
		return retryable
	}
	return status >= 500
}

// isTransient classifies an error from one run-driver invocation.
// Caller mistakes and context cancellation are never retried; remote
// failures, failed runs, timeouts and missing replies are.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrInvalidSession) {
		return false
	}
	var apiErr *assistant.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.StatusCode)
	}
	return true
}

// withRetry runs attempt up to the configured number of times with
// exponential backoff between tries, retrying only transient failures
// and re-raising the final failure unchanged.
func (a *Advisor) withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	for try := 0; try < a.retryAttempts; try++ {
		if try > 0 {
			delay := a.retryBaseDelay << (try - 1)
			if delay > a.retryMaxDelay {
				delay = a.retryMaxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-a.after(delay):
			}
		}

		lastErr = attempt()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		a.logger.Warn("transient assistant failure",
			"attempt", try+1,
			"max_attempts", a.retryAttempts,
			"error", lastErr,
		)
	}
	return lastErr
}
