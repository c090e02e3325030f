// Rating HTTP handlers.
//
// This file exposes the REST endpoint for rating AI messages:
//   - POST /chat/rate  (set or overwrite a rating)
//
// Handlers in this file are transport-thin: they validate input, delegate to
// application services, and translate domain/service errors into HTTP results.
// Rating values are constrained to 1..5 and only AI-authored messages accept
// one. Resubmitting a rating overwrites the previous value.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/services"
)

// RateMessageRequest is the JSON payload for rating an AI message.
//
// Rating must be an integer between 1 and 5 inclusive. The binding tag
// enforces the domain constraint at the transport layer.
type RateMessageRequest struct {
	// MessageID identifies the AI message being rated.
	MessageID string `json:"message_id" binding:"required" example:"fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b"`
	// Rating is the quality signal, 1 (worst) to 5 (best).
	Rating int `json:"rating" binding:"required,min=1,max=5" example:"4"`
}

// RateMessageResponse wraps the updated message after a successful rating.
type RateMessageResponse struct {
	Message *domain.Message `json:"message"`
}

// RateMessage godoc
// @ID          rateMessage
// @Summary     Rate an AI message
// @Description Records a 1..5 rating for an AI message owned by the caller.
// @Description Submitting again overwrites the previous rating.
// @Tags        Ratings
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Owner of the transcript"    example(user123)
// @Param       body       body    handlers.RateMessageRequest true "Rating payload"
//
// @Success     200  {object} handlers.RateMessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     403  {object} handlers.ErrorResponse "Message is not ratable"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /chat/rate [post]
func (h *Handlers) RateMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req RateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id and a rating between 1 and 5 are required")
		return
	}
	if _, err := uuid.Parse(req.MessageID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id must be a UUID")
		return
	}

	m, err := h.rateSvc.Rate(ctx, userID(c), req.MessageID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rating must be between 1 and 5")
		case errors.Is(err, services.ErrMessageNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
		case errors.Is(err, services.ErrForbiddenRating):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "only AI messages can be rated")
		default:
			failErr(c, http.StatusInternalServerError, ErrCodeRatingFailed, "could not save rating", err)
		}
		return
	}

	ok(c, http.StatusOK, RateMessageResponse{Message: m})
}
