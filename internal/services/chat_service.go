// Package services: ChatService
//
// This file implements ChatService, the ingestion pipeline behind both
// transports (HTTP and WebSocket). A submission runs the same sequence
// regardless of entry point: validate → dedup-check → persist user message →
// call the completion provider → persist AI message → cache the pair.
//
// Failure contract: the user message is persisted before the provider is
// called, so a transcript always shows the user's side even when generation
// fails. Provider failures surface wrapped in ErrCompletionFailed and never
// produce an AI row.
//
// Observability: Submit is OpenTelemetry-instrumented; spans record the owner
// and whether the response was served from cache.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmoralis/go-ai-chat/internal/cache"
	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/llm"
	"github.com/pmoralis/go-ai-chat/internal/repo"
)

// FallbackReply substitutes an empty or missing provider response so a
// persisted AI message is never blank.
const FallbackReply = "Sorry, I could not process your request."

// thinkTagRE matches reasoning-trace delimiters some providers leak into
// their output.
var thinkTagRE = regexp.MustCompile(`</?think>`)

// ChatService coordinates message ingestion and reply generation.
type ChatService struct {
	DB          *gorm.DB
	Completions llm.Client
	Cache       *cache.ResponseCache

	// MaxPromptRunes caps submission length; 0 disables the check.
	MaxPromptRunes int

	// CompletionTimeout bounds each provider call. Zero falls back to 30s.
	CompletionTimeout time.Duration
}

// Pair is a persisted (user message, AI reply) couple produced by one
// successful submission.
type Pair struct {
	UserMessage domain.Message `json:"user_message"`
	AIMessage   domain.Message `json:"ai_message"`
}

// Submit runs the ingestion pipeline for one owner submission and returns the
// persisted pair.
//
// Semantics:
//   - Empty (after trimming) content yields ErrEmptyPrompt; content longer
//     than MaxPromptRunes yields ErrTooLong. Nothing is persisted.
//   - A cache hit returns the previously produced pair with no store write
//     and no provider call.
//   - On a miss the user message is persisted first, unconditionally. The
//     provider is then called once, bounded by CompletionTimeout; failure or
//     timeout returns an error wrapping ErrCompletionFailed and leaves only
//     the user message behind.
//   - An empty reply is replaced with FallbackReply; reasoning-trace
//     delimiters are stripped before the AI message is persisted.
//   - The pair is cached only after both rows exist, so concurrent identical
//     submissions that overlap in flight each call the provider. The window
//     closes once the first of them completes.
func (s *ChatService) Submit(ctx context.Context, userID, content string) (*Pair, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(content) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	key := cache.Key(userID, content)
	if s.Cache != nil {
		if entry, ok := s.Cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &Pair{UserMessage: entry.UserMessage, AIMessage: entry.AIMessage}, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	userMsg, err := repo.CreateMessage(ctx, s.DB, userID, domain.RoleUser, content)
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := s.complete(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	reply = sanitizeReply(reply)
	if reply == "" {
		reply = FallbackReply
	}

	aiMsg, err := repo.CreateMessage(ctx, s.DB, userID, domain.RoleAI, reply)
	if err != nil {
		return nil, fmt.Errorf("persist ai message: %w", err)
	}

	pair := &Pair{UserMessage: *userMsg, AIMessage: *aiMsg}
	if s.Cache != nil {
		s.Cache.Put(key, cache.Entry{UserMessage: *userMsg, AIMessage: *aiMsg})
	}
	return pair, nil
}

// complete performs the single bounded provider call. The call is detached
// from caller cancellation: a requester that disconnects does not abort a
// generation already in flight. Only the timeout bounds it.
func (s *ChatService) complete(ctx context.Context, prompt string) (string, error) {
	timeout := s.CompletionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return s.Completions.Complete(ctx, prompt)
}

// sanitizeReply strips provider control markup and surrounding whitespace.
func sanitizeReply(s string) string {
	return strings.TrimSpace(thinkTagRE.ReplaceAllString(s, ""))
}
