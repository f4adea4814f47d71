package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUnprocessable
	KindTooManyRequests
)

func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure meant to reach the client. Detail is the message shown to it.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func BadRequest(detail string) *Error      { return New(KindBadRequest, detail) }
func Unauthorized(detail string) *Error    { return New(KindUnauthorized, detail) }
func Forbidden(detail string) *Error       { return New(KindForbidden, detail) }
func NotFound(detail string) *Error        { return New(KindNotFound, detail) }
func Unprocessable(detail string) *Error   { return New(KindUnprocessable, detail) }
func TooManyRequests(detail string) *Error { return New(KindTooManyRequests, detail) }

// KindOf reports the kind of err, or KindInternal when err carries no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
