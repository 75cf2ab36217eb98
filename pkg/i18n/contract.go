package i18n

import (
	"errors"
	"fmt"
	"sort"
)

// Params carries dynamic values used to interpolate a localized message template.
type Params map[string]interface{}

// AppError is the single error contract shared across layers:
// stable code + params + optional wrapped cause.
type AppError struct {
	Code            string
	FallbackMessage string
	Params          Params
	Details         map[string]interface{}
	HTTPStatus      int
	Cause           error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	label := e.Code
	if e.FallbackMessage != "" {
		label = e.FallbackMessage
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", label, e.Cause)
	}
	return label
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code.
// It lets callers match on a code-only template, e.g. errors.Is(err, &AppError{Code: "resource.not_found"}).
func (e *AppError) Is(target error) bool {
	var other *AppError
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// NewError creates an AppError with a stable message code.
func NewError(code string, params Params, cause error) *AppError {
	return &AppError{
		Code:   code,
		Params: cloneParams(params),
		Cause:  cause,
	}
}

// WithMessage sets a non-localized fallback message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	e.FallbackMessage = message
	return e
}

// WithHTTPStatus sets an explicit HTTP status for this error.
func (e *AppError) WithHTTPStatus(status int) *AppError {
	if e == nil {
		return nil
	}
	e.HTTPStatus = status
	return e
}

// WithDetails sets structured error details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	if e == nil {
		return nil
	}
	e.Details = details
	return e
}

// Translator resolves a message key into a localized text.
type Translator interface {
	T(key string, params Params) string
}

// CanonicalParams returns the param keys in a deterministic order.
func CanonicalParams(params Params) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func cloneParams(params Params) Params {
	if len(params) == 0 {
		return nil
	}
	out := make(Params, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}
