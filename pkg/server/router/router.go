// Package router provides an abstraction layer for HTTP routing.
// It defines interfaces that allow pluggable router implementations (gin-gonic, gorilla/mux).
package router

import (
	"net/http"
	"net/url"
)

// Router defines the interface for HTTP routing.
// Path parameters are written as ":name" whatever the implementation.
type Router interface {
	GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc)

	// Group creates a route group with common prefix and middleware
	Group(prefix string, middleware ...MiddlewareFunc) Router

	// Use applies middleware to routes registered afterwards
	Use(middleware ...MiddlewareFunc)

	// ServeHTTP implements http.Handler
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc is the function signature for route handlers.
// An error returned before anything was written becomes a 500.
type HandlerFunc func(Context) error

// MiddlewareFunc is the function signature for middleware.
// It wraps a HandlerFunc and returns a new HandlerFunc.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Context provides access to request and response in a router-agnostic way.
type Context interface {
	// Request returns the underlying HTTP request
	Request() *http.Request

	// SetRequest sets the HTTP request (useful for middleware that modifies the request)
	SetRequest(r *http.Request)

	// Response returns the response writer
	Response() ResponseWriter

	// Param returns a URL parameter by name (e.g., /projects/:id)
	Param(name string) string

	// Query returns the first value of a query parameter (e.g., /projects?q=jira)
	Query(name string) string

	// QueryParams returns every query parameter with all of its values
	QueryParams() url.Values

	// Bind parses the JSON request body into v
	Bind(v interface{}) error

	// JSON sends a JSON response with the given status code
	JSON(code int, v interface{}) error

	// String sends a plain text response with the given status code
	String(code int, s string) error

	// NoContent sends only the status code
	NoContent(code int) error

	// Get retrieves a value from the context by key
	Get(key string) interface{}

	// Set stores a value in the context by key
	Set(key string, value interface{})
}

// ResponseWriter wraps http.ResponseWriter to track response status.
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the HTTP status code of the response
	Status() int

	// Written returns whether the response has been written
	Written() bool
}
