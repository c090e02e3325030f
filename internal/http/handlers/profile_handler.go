// Profile HTTP handlers.
//
// This file exposes the REST endpoint for the owner's assistant persona:
//   - PUT /profile/chatbot-name  (rename the assistant)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/services"
)

// UpdateChatbotNameRequest is the JSON payload for renaming the assistant.
type UpdateChatbotNameRequest struct {
	// ChatbotName is the new display name (1-50 chars after trimming).
	ChatbotName string `json:"chatbot_name" binding:"required,min=1,max=50" example:"Atlas"`
}

// UpdateChatbotNameResponse wraps the stored profile after a rename.
type UpdateChatbotNameResponse struct {
	Profile *domain.Profile `json:"profile"`
}

// UpdateChatbotName godoc
// @ID          updateChatbotName
// @Summary     Rename the caller's assistant
// @Description Stores a new display name for the caller's assistant persona.
// @Tags        Profile
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Owner of the profile"  example(user123)
// @Param       body       body    handlers.UpdateChatbotNameRequest true "Rename payload"
//
// @Success     200  {object} handlers.UpdateChatbotNameResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid name"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /profile/chatbot-name [put]
func (h *Handlers) UpdateChatbotName(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdateChatbotNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chatbot_name must be 1-50 characters")
		return
	}

	p, err := h.profSvc.UpdateChatbotName(ctx, userID(c), req.ChatbotName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidChatbotName):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chatbot_name must be 1-50 characters")
		default:
			failErr(c, http.StatusInternalServerError, ErrCodeProfileFailed, "could not update profile", err)
		}
		return
	}

	ok(c, http.StatusOK, UpdateChatbotNameResponse{Profile: p})
}
