package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine error.
type Kind string

// Error kinds.
const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindSelfVote      Kind = "self_vote"
	KindConflict      Kind = "conflict"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrSelfVote      = &Error{Kind: KindSelfVote}
	ErrConflict      = &Error{Kind: KindConflict}
)

// An Error is a typed engine failure that callers can render.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
}

// Error implements error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a malformed-input error.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound returns a missing-reference error.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Unauthorized returns an error for a caller lacking the required capability.
func Unauthorized(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

// SelfVote returns the error for an author voting on their own item.
func SelfVote(itemID string) *Error {
	return newf(KindSelfVote, "cannot upvote your own item %s", itemID)
}

// Conflict returns an error for an unresolved ledger race.
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusCode returns the HTTP status code for err.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindSelfVote, KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
