package httperr

import (
	"errors"
	"fmt"
	"time"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "unexpected"
	}
}

// BusinessError is a classified domain failure. Message is safe to show to
// callers, Err never is.
type BusinessError struct {
	Kind       Kind
	Code       string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// ErrBusiness is a conflict-class rule violation identified by code.
func ErrBusiness(code string) error {
	return &BusinessError{Kind: KindConflict, Code: code, Message: messageFor(code)}
}

func IsBusiness(err error, code string) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnexpected
}

func Validation(code, message string) error {
	return &BusinessError{Kind: KindValidation, Code: code, Message: message}
}

func Unauthenticated(code, message string) error {
	return &BusinessError{Kind: KindUnauthenticated, Code: code, Message: message}
}

func Forbidden(code, message string) error {
	return &BusinessError{Kind: KindForbidden, Code: code, Message: message}
}

func NotFoundErr(code, message string) error {
	return &BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code, message string) error {
	return &BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func RateLimited(retryAfter time.Duration) error {
	return &BusinessError{
		Kind:       KindRateLimited,
		Code:       "rate_limited",
		Message:    "Too many requests, please try again later.",
		RetryAfter: retryAfter,
	}
}

func Transient(code string, err error) error {
	msg := "The service is temporarily unavailable, please try again."
	if code == "reservation_outcome_unknown" {
		msg = "The booking outcome is unknown, refresh the time slots before retrying."
	}
	return &BusinessError{
		Kind:    KindTransient,
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

func messageFor(code string) string {
	switch code {
	case "illegal_transition":
		return "This action is not allowed in the current state."
	case "already_enrolled":
		return "You are already enrolled in this course."
	case "slot_not_available":
		return "Time slot is not available."
	default:
		return "The request conflicts with the current state."
	}
}
