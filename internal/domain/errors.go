package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so adapters (HTTP, TUI, CLI) can react uniformly.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindConfiguration    Kind = "configuration"
	KindUpstream         Kind = "upstream"
	KindSchemaValidation Kind = "schema_validation"
	KindNotFound         Kind = "not_found"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrUpstream         = &Error{Kind: KindUpstream}
	ErrSchemaValidation = &Error{Kind: KindSchemaValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// Error is the error type returned by the core packages.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "dojo.start".
	Op  string
	Msg string
	// Raw holds the offending payload for schema validation failures.
	Raw string
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation returns a validation error for op.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Configuration returns a configuration error for op.
func Configuration(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure of an external service.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Msg: "upstream request failed", Err: err}
}

// SchemaValidation wraps a malformed AI response, keeping the raw text.
func SchemaValidation(op, raw string, err error) error {
	return &Error{Kind: KindSchemaValidation, Op: op, Msg: "response does not match the question format", Raw: raw, Err: err}
}

// NotFound reports a missing entity.
func NotFound(op, entity string, id int64) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("%s %d not found", entity, id)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns a short human-readable description of err for display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		switch e.Kind {
		case KindUpstream:
			return "Question generation failed. Check the API key and network, then try again."
		case KindSchemaValidation:
			return "The AI response was malformed. Try again."
		}
		return e.Msg
	}
	return err.Error()
}
