// Chat HTTP handlers.
//
// This file exposes the REST endpoints for the message pipeline:
//   - POST /messages   (submit a prompt; persists the user message and an AI reply)
//   - GET  /messages   (list the caller's transcript, paginated, ETag support)
//
// Handlers are transport-thin: they validate and normalize inputs (including
// newline and length constraints), delegate to application services, and
// translate results into HTTP responses (including conditional responses).
//
// Duplicate submissions:
// An identical prompt resubmitted by the same owner within the response-cache
// window returns the previously persisted pair without a second provider call.
// That behavior lives in the service layer; the handler stays oblivious.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/repo"
	"github.com/pmoralis/go-ai-chat/internal/services"
	"github.com/pmoralis/go-ai-chat/internal/sysutil"
	"github.com/pmoralis/go-ai-chat/internal/utils"
)

//
// Service contracts (context-aware)
//

// ChatService defines the submission pipeline consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// Submit persists the user prompt and an AI reply for userID.
	Submit(ctx context.Context, userID, content string) (*services.Pair, error)
}

// HistoryService defines paginated transcript reads.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type HistoryService interface {
	// ListPage returns one page of userID's transcript plus pagination metadata.
	ListPage(ctx context.Context, userID string, page, pageSize int) (*services.HistoryPage, error)
}

// RatingService defines operations to capture user ratings on AI messages.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RatingService interface {
	// Rate records a 1..5 rating for messageID owned by userID.
	Rate(ctx context.Context, userID, messageID string, rating int) (*domain.Message, error)
}

// ProfileService defines owner profile mutations.
type ProfileService interface {
	// UpdateChatbotName renames the owner's assistant persona.
	UpdateChatbotName(ctx context.Context, ownerID, name string) (*domain.Profile, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for messages, ratings, and profiles.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	chatSvc ChatService
	histSvc HistoryService
	rateSvc RatingService
	profSvc ProfileService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(chatSvc ChatService, histSvc HistoryService, rateSvc RatingService, profSvc ProfileService) *Handlers {
	return &Handlers{chatSvc: chatSvc, histSvc: histSvc, rateSvc: rateSvc, profSvc: profSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	var fromCtx, fromHeader string
	if v, ok := c.Get("userID"); ok {
		fromCtx, _ = v.(string)
	}
	if c != nil && c.Request != nil {
		fromHeader = strings.TrimSpace(c.GetHeader("X-User-ID"))
	}
	return sysutil.FirstNonEmpty(fromCtx, fromHeader, "demo-user")
}

//
// DTOs
//

// PostMessageRequest is the JSON payload for submitting a prompt.
//
// Content is normalized by the handler (line endings and excessive blank lines)
// before being passed to the service layer. The service also enforces a
// maximum rune count, which can be configured in ChatService.
type PostMessageRequest struct {
	// Content is the user prompt. It must be non-empty.
	Content string `json:"content" binding:"required,min=1" example:"What is the capital of Portugal?"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	HasMore     bool  `json:"hasMore"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
}

// ListMessagesResponse contains a page of transcript messages and pagination
// metadata.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses page/page_size from query parameters, applies sane
// defaults and caps, and returns the validated (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage = 1
		maxPageSize = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), services.DefaultPageSize), 1, maxPageSize)
	return
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxPromptRunes inspects the concrete ChatService for a configured
// prompt-length limit. If unavailable, it returns a conservative fallback.
func discoverMaxPromptRunes(chatSvc ChatService) int {
	const fallback = 4000
	if cs, ok := chatSvc.(*services.ChatService); ok {
		if cs.MaxPromptRunes > 0 {
			return cs.MaxPromptRunes
		}
	}
	return fallback
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message and get an AI reply
// @Description Persists the user prompt and generates an AI reply. Identical
// @Description prompts resubmitted within the dedup window return the prior pair.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Owner of the transcript"  example(user123)
// @Param       body       body    handlers.PostMessageRequest  true  "User prompt payload"
//
// @Success     200  {object}  services.Pair           "Persisted user/AI message pair"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Completion or storage failure"
// @Router      /chat/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxPromptRunes(h.chatSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	pair, err := h.chatSvc.Submit(ctx, userID(c), content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		case errors.Is(err, services.ErrCompletionFailed):
			fail(c, http.StatusInternalServerError, ErrCodeCompletionFailed, err.Error())
		default:
			failErr(c, http.StatusInternalServerError, ErrCodeInternal, "something went wrong, please try again", err)
		}
		return
	}

	ok(c, http.StatusOK, pair)
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List the caller's transcript
// @Description Returns one page of the caller's messages, oldest first within the page.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header string  true  "Owner of the transcript"  example(user123)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chat/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	currentUser := userID(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.histSvc.(*services.HistoryService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.MessagesStats(ctx, db, currentUser)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, currentUser, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page, pageSize := clampPagination(c)

	hp, err := h.histSvc.ListPage(ctx, currentUser, page, pageSize)
	if err != nil {
		failErr(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load messages", err)
		return
	}

	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: hp.Messages,
		Pagination: Pagination{
			HasMore:     hp.HasMore,
			CurrentPage: hp.CurrentPage,
			TotalPages:  hp.TotalPages,
			Total:       hp.Total,
		},
	})
}
