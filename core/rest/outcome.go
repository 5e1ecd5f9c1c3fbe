package rest

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeKind is the closed set of results a single logical request can have.
type OutcomeKind int

const (
	// KindSuccess carries the response payload of a 200 response.
	KindSuccess OutcomeKind = iota
	// KindRateLimited is a 429 response with its Retry-After wait.
	KindRateLimited
	// KindAuthFailed is a 401 or 403 response. Never retried.
	KindAuthFailed
	// KindServerError is a 5xx response.
	KindServerError
	// KindClientError is any other non-2xx response. Never retried.
	KindClientError
	// KindTimeout is a request that exceeded the configured timeout.
	KindTimeout
	// KindTransportError is a connection-level failure.
	KindTransportError
)

// String returns the kind name used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindAuthFailed:
		return "auth_failed"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindTimeout:
		return "timeout"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the tagged result of one logical HTTP request.
// It is never mutated after creation.
type Outcome struct {
	// Kind tags which variant this outcome is.
	Kind OutcomeKind

	// Payload is the raw response body. Set only for KindSuccess.
	Payload json.RawMessage

	// StatusCode is the HTTP status. Zero for timeouts and transport errors.
	StatusCode int

	// RetryAfter is the server-specified wait. Set only for KindRateLimited.
	RetryAfter time.Duration

	// Body is a truncated body snippet. Set only for KindClientError.
	Body string

	// Err is the underlying transport error, if any.
	Err error
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// AsError converts a failed outcome into an error. Returns nil for success.
func (o Outcome) AsError() error {
	switch o.Kind {
	case KindSuccess:
		return nil
	case KindRateLimited:
		return fmt.Errorf("rate limited, retry after %s", o.RetryAfter)
	case KindAuthFailed:
		return fmt.Errorf("authentication failed: status %d", o.StatusCode)
	case KindServerError:
		return fmt.Errorf("server error: status %d", o.StatusCode)
	case KindClientError:
		return fmt.Errorf("request rejected: status %d: %s", o.StatusCode, o.Body)
	case KindTimeout:
		return fmt.Errorf("request timed out: %w", o.Err)
	case KindTransportError:
		return fmt.Errorf("transport error: %w", o.Err)
	default:
		return fmt.Errorf("unknown outcome %d", int(o.Kind))
	}
}

// retryable reports whether the outcome takes the standard backoff path.
// Rate limiting is handled separately because its wait comes from the server.
func (o Outcome) retryable() bool {
	switch o.Kind {
	case KindServerError, KindTimeout, KindTransportError:
		return true
	default:
		return false
	}
}
