// Package services defines the business logic for message submission, history
// reads, ratings, and owner profiles. This file centralizes common
// service-level error values so they can be consistently returned by service
// methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler/transport layer.
package services

import "errors"

// Submission-related errors.
var (
	// ErrEmptyPrompt is returned when a submission contains no content after
	// trimming.
	ErrEmptyPrompt = errors.New("content is empty")

	// ErrTooLong is returned when a submission exceeds the maximum configured
	// content length.
	ErrTooLong = errors.New("content too long")

	// ErrCompletionFailed wraps failures (including timeouts) of the external
	// completion provider. The user message is already persisted when this is
	// returned; callers surface it distinctly from validation errors.
	ErrCompletionFailed = errors.New("completion failed")
)

// Rating-related errors.
var (
	// ErrMessageNotFound indicates the requested message does not exist or is
	// not accessible to the current user.
	ErrMessageNotFound = errors.New("message not found")

	// ErrInvalidRating is returned when a rating value is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrForbiddenRating is returned when a user attempts to rate a message
	// that is not AI-authored.
	ErrForbiddenRating = errors.New("only AI messages can be rated")
)

// Profile-related errors.
var (
	// ErrInvalidChatbotName is returned when a chatbot name is empty or
	// exceeds the allowed length.
	ErrInvalidChatbotName = errors.New("chatbot name must be 1-50 characters")
)
