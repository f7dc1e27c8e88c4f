package desktypes

import (
	"errors"
	"fmt"
)

// ErrReauthRequired is returned by the gateway when the backend rejects the
// session token. Callers must treat it as a hard reset of local session
// state, not a retryable failure.
var ErrReauthRequired = errors.New("session expired, re-authentication required")

// ValidationError reports input rejected before any network call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransportError reports an unreachable backend or a non-2xx response.
// Detail carries the backend's human-readable message when one was parseable.
type TransportError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.StatusCode != 0:
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	default:
		return "transport failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an operation on an unknown entity id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ProtectedEntityError reports an attempt to mutate an entity that must
// always exist, such as the default project.
type ProtectedEntityError struct {
	Kind string
	ID   string
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("%s %q is protected and cannot be modified", e.Kind, e.ID)
}

// SendError reports a failed message round-trip. The optimistic user entry
// has already been rolled back by the time a SendError is returned.
type SendError struct {
	Reason string
	Err    error
}

func (e *SendError) Error() string {
	return e.Reason
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// CreationError is an opaque failure from the assistant creation workflow.
type CreationError struct {
	Detail string
	Err    error
}

func (e *CreationError) Error() string {
	return e.Detail
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
