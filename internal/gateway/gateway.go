// Package gateway narrows every model call down to a single contract:
// prompt in, generated text out, with a three-kind failure taxonomy so
// callers never see provider-specific error types.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Completer is the one capability the rest of the service depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string, timeout time.Duration) (string, error)
}

var (
	// ErrTimeout reports that the upstream model did not answer in time.
	ErrTimeout = errors.New("completion timed out")
	// ErrAuth reports that the upstream rejected our credentials.
	ErrAuth = errors.New("completion auth failed")
)

// UpstreamError wraps any other upstream failure. Message is truncated so
// large provider payloads never leak into responses or logs.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "upstream: " + e.Message
}

const maxUpstreamMessage = 300

var authPhrases = []string{
	"unauthenticated",
	"permission_denied",
	"permission denied",
	"unauthorized",
	"invalid api key",
	"api key not valid",
	"api_key_invalid",
	"401",
	"403",
}

// Classify maps a provider error onto the gateway failure taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, phrase := range authPhrases {
		if strings.Contains(lower, phrase) {
			return ErrAuth
		}
	}
	return &UpstreamError{Message: Truncate(msg, maxUpstreamMessage)}
}

// Truncate caps s at n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
