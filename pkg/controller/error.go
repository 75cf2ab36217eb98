// Package controller exposes entity services over HTTP: error mapping,
// response envelopes and the generic entity controller.
package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

const internalMessage = "an unexpected error occurred"

// MapError maps an error to a status and a response body. AppErrors keep
// their code and get a message localised through the translator in ctx;
// anything else is an opaque 500.
func MapError(ctx context.Context, err error) (int, ErrorResponse) {
	requestID := logger.RequestID(ctx)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_server_error",
			Code:      apperror.CodeInternal,
			Message:   translate(ctx, apperror.CodeInternal, nil, internalMessage),
			RequestID: requestID,
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = inferStatusFromCode(appErr.Code)
	}

	message := translate(ctx, appErr.Code, appErr.Params, appErr.FallbackMessage)
	if status >= http.StatusInternalServerError {
		message = translate(ctx, apperror.CodeInternal, nil, internalMessage)
	}

	return status, ErrorResponse{
		Error:     errorCategory(status, appErr.Code),
		Code:      appErr.Code,
		Message:   message,
		RequestID: requestID,
		Details:   appErr.Details,
	}
}

// translate returns the catalog message for code, or fallback when the
// catalog has no entry.
func translate(ctx context.Context, code string, params i18n.Params, fallback string) string {
	if code == "" {
		return fallback
	}
	translated := i18n.TranslatorFromContext(ctx).T(code, params)
	if translated == "" || translated == code {
		if fallback != "" {
			return fallback
		}
		return internalMessage
	}
	return translated
}

func errorCategory(status int, code string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(code)), "validation.") {
		return "validation_error"
	}

	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "invalid_operation"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	default:
		if status >= 500 {
			return "internal_server_error"
		}
		return "application_error"
	}
}

func inferStatusFromCode(code string) int {
	lowerCode := strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(lowerCode, "validation."):
		return http.StatusBadRequest
	case strings.HasSuffix(lowerCode, ".not_found"):
		return http.StatusNotFound
	case strings.HasSuffix(lowerCode, ".conflict"):
		return http.StatusConflict
	case strings.HasPrefix(lowerCode, "operation."):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
