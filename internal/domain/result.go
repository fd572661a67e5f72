package domain

import (
	"errors"
	"time"
)

// Outcome tags a ToolResult.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	return string(o)
}

// ToolResult is the normalized outcome of a single tool call.
// Exactly one ToolResult is produced per call.
type ToolResult struct {
	Tool    string        // registered tool name
	Outcome Outcome       // success | not_found | error
	Payload any           // typed payload, set only on success
	Reason  string        // not_found reason or error message
	Source  string        // upstream that produced the payload
	Latency time.Duration // wall time of the call
}

// Success builds a successful result.
func Success(tool, source string, payload any) ToolResult {
	return ToolResult{Tool: tool, Outcome: OutcomeSuccess, Payload: payload, Source: source}
}

// NotFound builds a not_found result.
func NotFound(tool, reason string) ToolResult {
	return ToolResult{Tool: tool, Outcome: OutcomeNotFound, Reason: reason}
}

// Failure builds an error result.
func Failure(tool, message string) ToolResult {
	return ToolResult{Tool: tool, Outcome: OutcomeError, Reason: message}
}

// FromError converts err into a not_found or error result.
func FromError(tool string, err error) ToolResult {
	if errors.Is(err, ErrNotFound) {
		return NotFound(tool, err.Error())
	}
	return Failure(tool, err.Error())
}

// OK reports whether the call succeeded.
func (r ToolResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// As extracts a typed payload from a successful result.
func As[T any](r ToolResult) (T, bool) {
	var zero T
	if !r.OK() {
		return zero, false
	}
	v, ok := r.Payload.(T)
	return v, ok
}
