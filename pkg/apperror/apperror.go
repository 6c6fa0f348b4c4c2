package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindSlotUnavailable     Kind = "SLOT_UNAVAILABLE"
	KindInvalidTransition   Kind = "INVALID_TRANSITION"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindNotFound            Kind = "NOT_FOUND"
)

// Error is the typed failure surfaced by the scheduling core.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps offending request fields to messages. Only set for validation errors.
	Fields map[string]string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrSlotUnavailable     = &Error{Kind: KindSlotUnavailable}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(keys, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Validation reports malformed input. fields names each offending field.
func Validation(message string, fields map[string]string) *Error {
	if message == "" {
		message = "validation failed"
	}
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// ValidationField is a shorthand for a single offending field.
func ValidationField(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func SlotUnavailable(message string) *Error {
	return &Error{Kind: KindSlotUnavailable, Message: message}
}

// InvalidTransition reports that an appointment in state from does not accept operation.
func InvalidTransition(from, operation string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot %s an appointment in status %s", operation, from),
	}
}

func InvalidTransitionf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure of the catalog provider or the persistence layer.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// AsUpstream passes typed errors through and wraps anything else as upstream unavailable.
func AsUpstream(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Upstream(message, err)
}
