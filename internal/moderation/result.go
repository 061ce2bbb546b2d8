package moderation

import "fmt"

// Kind is the closed set of failure reasons. The human-readable message is
// derived from the kind, not the other way around, so callers can branch on
// failures programmatically instead of string-matching toasts.
type Kind string

const (
	KindNone           Kind = ""
	KindNotFound       Kind = "not_found"
	KindAlreadyInState Kind = "already_in_state"
	KindInvalidInput   Kind = "invalid_input"
	KindUnauthorized   Kind = "unauthorized"
	KindUnknown        Kind = "unknown"
)

// Result is the envelope every moderation operation returns. Operations do
// not panic or throw; storage errors surface as a separate error return.
type Result struct {
	Success bool   `json:"success"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

func ok(format string, args ...interface{}) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func fail(kind Kind, format string, args ...interface{}) Result {
	return Result{Success: false, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
