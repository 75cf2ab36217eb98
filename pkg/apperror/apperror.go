// Package apperror defines the error taxonomy shared by the query, service and
// controller layers. Every error is an i18n.AppError carrying a stable code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/i18n"
)

// Stable error codes. They double as i18n catalog keys.
const (
	CodeValidation       = "validation.failed"
	CodeInvalidArgument  = "validation.invalid_argument"
	CodeBlankProperty    = "validation.blank_property"
	CodeNilValue         = "validation.nil_value"
	CodeUnknownProperty  = "validation.unknown_property"
	CodeInvalidParameter = "validation.invalid_parameter"
	CodeInvalidPage      = "validation.invalid_page"
	CodeNotFound         = "resource.not_found"
	CodeConflict         = "resource.conflict"
	CodeInvalidOperation = "operation.invalid"
	CodeTooLarge         = "request.too_large"
	CodeInternal         = "internal.error"
)

// AppError is the application error contract.
type AppError = i18n.AppError

// InvalidArgument reports a required argument that is missing or blank.
func InvalidArgument(argument string) *AppError {
	return i18n.NewError(CodeInvalidArgument, i18n.Params{"argument": argument}, nil).
		WithMessage(fmt.Sprintf("invalid argument: %s", argument)).
		WithHTTPStatus(http.StatusBadRequest)
}

// NotFound reports a valid request with no matching entity.
func NotFound(entity string, id any) *AppError {
	return i18n.NewError(CodeNotFound, i18n.Params{"entity": entity, "id": id}, nil).
		WithMessage(fmt.Sprintf("%s with id %v not found", entity, id)).
		WithHTTPStatus(http.StatusNotFound)
}

// Validation reports a domain invariant violation detected before any persistence call.
func Validation(message string, details map[string]interface{}) *AppError {
	return i18n.NewError(CodeValidation, nil, nil).
		WithMessage(message).
		WithHTTPStatus(http.StatusBadRequest).
		WithDetails(details)
}

// ValidationWithCode is Validation with a localisable code and params.
// The code is expected to live under the "validation." namespace.
func ValidationWithCode(code, message string, params i18n.Params, cause error) *AppError {
	return i18n.NewError(code, params, cause).
		WithMessage(message).
		WithHTTPStatus(http.StatusBadRequest)
}

// Conflict reports a concurrent modification, typically an optimistic lock failure.
func Conflict(entity string, cause error) *AppError {
	return i18n.NewError(CodeConflict, i18n.Params{"entity": entity}, cause).
		WithMessage(fmt.Sprintf("%s was modified concurrently", entity)).
		WithHTTPStatus(http.StatusConflict)
}

// InvalidOperation reports a request that is well formed but not allowed in the
// current state. userMessage is safe to show to end users, message is not.
func InvalidOperation(message, userMessage string) *AppError {
	return i18n.NewError(CodeInvalidOperation, nil, errors.New(message)).
		WithMessage(userMessage).
		WithHTTPStatus(http.StatusUnprocessableEntity)
}

// TooLarge reports a request body above the configured limit of maxBytes.
func TooLarge(maxBytes int64, cause error) *AppError {
	return i18n.NewError(CodeTooLarge, i18n.Params{"max": maxBytes}, cause).
		WithMessage(fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", maxBytes)).
		WithHTTPStatus(http.StatusRequestEntityTooLarge)
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *AppError {
	return i18n.NewError(CodeInternal, nil, cause).
		WithMessage(message).
		WithHTTPStatus(http.StatusInternalServerError)
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInvalidArgument reports whether err carries the invalid-argument code.
func IsInvalidArgument(err error) bool {
	return hasCode(err, CodeInvalidArgument)
}

// IsValidation reports whether err is any validation.* error, invalid arguments included.
func IsValidation(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return strings.HasPrefix(appErr.Code, "validation.")
}

// IsConflict reports whether err carries the conflict code.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

func hasCode(err error, code string) bool {
	return errors.Is(err, &AppError{Code: code})
}
