package controller

import (
	"net/http"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// SuccessResponse represents a successful response with data
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends data wrapped in a SuccessResponse with HTTP 200.
func Success(c router.Context, data interface{}) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: logger.RequestID(c.Request().Context()),
	})
}

// Created sends data wrapped in a SuccessResponse with HTTP 201.
func Created(c router.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: logger.RequestID(c.Request().Context()),
	})
}

// NoContent sends HTTP 204 without a body.
func NoContent(c router.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error sends the response MapError builds for err.
func Error(c router.Context, err error) error {
	statusCode, errorResponse := MapError(c.Request().Context(), err)
	return c.JSON(statusCode, errorResponse)
}
