// Package services: HistoryService
//
// This file implements HistoryService, the read-only view over an owner's
// transcript. Pages are fetched newest-first from the store and reversed
// before returning, so each page reads oldest-to-newest (display order) while
// page 1 always holds the most recent messages.
package services

import (
	"context"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/repo"
)

// DefaultPageSize is the transcript page size when none is requested.
const DefaultPageSize = 20

// HistoryPage is one page of an owner's transcript plus pagination metadata.
type HistoryPage struct {
	// Messages in chronological ascending order within the page.
	Messages []domain.Message

	HasMore     bool
	CurrentPage int
	TotalPages  int
	Total       int64
}

// HistoryService serves paginated transcript reads. It never mutates the
// store.
type HistoryService struct {
	DB *gorm.DB
}

// ListPage returns page pageNumber of userID's transcript.
//
// Page numbers start at 1; invalid values are coerced. Requesting beyond the
// last page yields an empty slice with HasMore=false. TotalPages is
// ceil(total/pageSize) and HasMore is total > pageNumber*pageSize.
func (s *HistoryService) ListPage(ctx context.Context, userID string, page, pageSize int) (*HistoryPage, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	out := &HistoryPage{
		Messages:    []domain.Message{},
		CurrentPage: page,
		Total:       total,
		TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
		HasMore:     total > int64(page)*int64(pageSize),
	}
	if total == 0 || int64(offset) >= total {
		return out, nil
	}

	items, err := repo.ListMessagesPageDesc(ctx, s.DB, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}

	// Newest-first from the store; flip to display order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	out.Messages = items
	return out, nil
}
