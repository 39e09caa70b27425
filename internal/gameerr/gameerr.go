// Package gameerr defines the typed error kinds the game service returns
// to callers, as the seven error kinds below: InvalidInput, NotFound,
// ThresholdNotMet, InsufficientInfluence, CooldownActive, GamePaused,
// and EnhancerFailure. Callers test with errors.Is against the sentinel
// and, when present, unwrap an *Error for structured fields.
package gameerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Handlers wrap one of these with fmt.Errorf("...: %w", ...)
// or return a *Error built with one of the constructors below.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrThresholdNotMet       = errors.New("threshold not met")
	ErrInsufficientInfluence = errors.New("insufficient influence")
	ErrCooldownActive        = errors.New("cooldown active")
	ErrGamePaused            = errors.New("game paused")
	ErrEnhancerFailure       = errors.New("narrative enhancer failure")
)

// Error carries structured detail alongside one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, fields map[string]any, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Fields: fields}
}

// InvalidInput reports malformed arguments or unknown enum values.
func InvalidInput(format string, args ...any) *Error {
	return newErr(ErrInvalidInput, nil, format, args...)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(kind, id string) *Error {
	return newErr(ErrNotFound, map[string]any{"kind": kind, "id": id}, "%s %q not found", kind, id)
}

// ThresholdNotMet reports a reputation gate failure. message names the
// action and the required value, .
func ThresholdNotMet(action string, have, need int) *Error {
	return newErr(ErrThresholdNotMet,
		map[string]any{"action": action, "have": have, "need": need},
		"action %q requires reputation >= %d, have %d", action, need, have)
}

// InsufficientInfluence reports an influence shortfall for a faction.
func InsufficientInfluence(faction string, have, need int) *Error {
	return newErr(ErrInsufficientInfluence,
		map[string]any{"faction": faction, "have": have, "need": need},
		"insufficient %s influence: have %d, need %d", faction, have, need)
}

// CooldownActive reports an action gated by an active cooldown.
func CooldownActive(action string, remaining int) *Error {
	return newErr(ErrCooldownActive,
		map[string]any{"action": action, "remaining": remaining},
		"action %q is on cooldown for %d more tick(s)", action, remaining)
}

// GamePaused reports that the core refuses non-admin operations while paused.
func GamePaused(reason string) *Error {
	return newErr(ErrGamePaused, map[string]any{"pause_reason": reason},
		"game is paused: %s", reason)
}

// EnhancerFailure wraps a narrative enhancer timeout/error. Not normally
// surfaced to callers directly; it is tallied toward the pause window.
func EnhancerFailure(cause error) *Error {
	return newErr(ErrEnhancerFailure, nil, "narrative enhancer failed: %v", cause)
}
