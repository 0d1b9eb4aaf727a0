package upstream

import "fmt"

// ErrorKind classifies upstream failures so the gateway can map each one to
// a caller-visible status.
type ErrorKind int

const (
	// KindAuthFailed means the backend rejected the gateway's own credential.
	KindAuthFailed ErrorKind = iota
	// KindBackendError means the backend returned a non-200 other than 401.
	KindBackendError
	// KindTimeout means no response arrived within the request ceiling.
	KindTimeout
	// KindUnreachable means the connection itself failed (DNS, refused, reset).
	KindUnreachable
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthFailed:
		return "auth_failed"
	case KindBackendError:
		return "backend_error"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Error is a typed upstream failure raised before any response byte has been
// forwarded to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}
