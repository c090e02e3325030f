// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a message is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ordering: an owner's transcript is totally ordered by (created_at, id).
// Writers never touch content, role, or owner after creation; the single
// mutable field is rating, updated through UpdateMessageRating only.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

// CreateMessage inserts a new message row for userID with the given role and
// content. The ID and CreatedAt are store-assigned.
func CreateMessage(ctx context.Context, db *gorm.DB, userID, role, content string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// CountMessages returns the total number of messages owned by userID. A raw
// COUNT is used so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM messages WHERE user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// ListMessagesPageDesc returns a paginated slice of userID's transcript
// ordered newest-first (CreatedAt DESC, ID DESC). Callers that need display
// order reverse the slice.
func ListMessagesPageDesc(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetOwnedMessage fetches a message by ID ensuring it belongs to userID.
// Returns ErrNotFound when the row does not exist or is owned by someone else.
func GetOwnedMessage(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageRating sets the rating column on a single message row,
// enforcing ownership in the WHERE clause. Returns ErrNotFound when no row
// matched. Overwriting an existing rating is allowed (idempotent update).
func UpdateMessageRating(ctx context.Context, db *gorm.DB, id, userID string, rating int) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MessagesStats returns aggregate metadata for an owner's transcript: the
// total number of rows and the greatest CreatedAt among them. Used for
// conditional responses (ETag generation) in the HTTP layer. When the owner
// has no messages, count is 0 and maxCreatedAt is nil.
func MessagesStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() -> TEXT conversions in SQLite.
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
