package ingest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an ingestion failure so callers can map it to a
// transport status without inspecting error text.
type ErrorKind int

const (
	// KindValidation covers client-supplied data failing shape or range
	// checks. Deterministic for a given payload, never worth retrying.
	KindValidation ErrorKind = iota
	// KindStorage covers failed storage round-trips after the payload
	// was accepted.
	KindStorage
	// KindUnexpected covers anything uncategorized.
	KindUnexpected
)

// Error wraps an ingestion failure with its classification.
type Error struct {
	err  error
	msg  string
	Kind ErrorKind
}

func (e *Error) Error() string {
	if e.err != nil && e.msg == "" {
		return e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// validationErr builds a client-error with a formatted message.
func validationErr(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// storageErr wraps a failed storage operation.
func storageErr(err error) *Error {
	return &Error{Kind: KindStorage, err: err, msg: "storage operation failed"}
}

// KindOf returns the classification of err, or KindUnexpected when err
// does not carry one.
func KindOf(err error) ErrorKind {
	var ingestErr *Error
	if errors.As(err, &ingestErr) {
		return ingestErr.Kind
	}
	return KindUnexpected
}

// IsValidation reports whether err is a client-data failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
