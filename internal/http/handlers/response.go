// Package handlers provides the HTTP handler implementations for the public
// API.
//
// This file defines the shared response helpers. Every endpoint returns the
// same error envelope so clients can switch on a stable code instead of
// parsing prose:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "message not found"
//	}
//
// fail() centralizes formatting and makes sure 5xx responses are logged with
// request context.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmoralis/go-ai-chat/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. Code is a
// stable machine-readable string (see errors.go); Message is safe to show to
// users; RequestID correlates server logs with client-side reports.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"message not found"`
}

// fail aborts the request with the structured error envelope. Server errors
// (>= 500) are logged through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// failErr is fail for unexpected store or internal errors: the response body
// carries only the generic msg while the underlying cause goes to the logs.
func failErr(c *gin.Context, status int, code, msg string, err error) {
	lg := middleware.LoggerFrom(c)
	lg.Error().
		Err(err).
		Int("status", status).
		Str("code", code).
		Msg("api error")

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail() to the router for NoRoute/NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
