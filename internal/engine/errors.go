package engine

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so transports can map them to the right
// client-facing response without string matching.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindRanking       Kind = "ranking"
	KindPhase         Kind = "phase"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) *Error {
	return errf(KindValidation, format, args...)
}

func rankingf(format string, args ...interface{}) *Error {
	return errf(KindRanking, format, args...)
}

func phasef(format string, args ...interface{}) *Error {
	return errf(KindPhase, format, args...)
}

func authorizationf(format string, args ...interface{}) *Error {
	return errf(KindAuthorization, format, args...)
}

func notFoundf(format string, args ...interface{}) *Error {
	return errf(KindNotFound, format, args...)
}

func conflictf(format string, args ...interface{}) *Error {
	return errf(KindConflict, format, args...)
}

func internalf(format string, args ...interface{}) *Error {
	return errf(KindInternal, format, args...)
}

// KindOf extracts the Kind from any error produced by the engine; unknown
// errors are reported as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
