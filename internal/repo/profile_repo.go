// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the typed owner-profile repository.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

// ProfileFields enumerates the mutable columns of a Profile. A nil field is
// left unchanged. Updates go through this explicit struct rather than an
// open-ended map so the set of writable columns is fixed at compile time.
type ProfileFields struct {
	ChatbotName *string
}

// GetProfile fetches the profile row for userID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateOwnerProfile upserts the profile row for ownerID, applying only the
// fields that are set. The row is created on first update so owners get a
// profile lazily.
func UpdateOwnerProfile(ctx context.Context, db *gorm.DB, ownerID string, fields ProfileFields) (*domain.Profile, error) {
	now := time.Now().UTC()
	p := &domain.Profile{UserID: ownerID, CreatedAt: now, UpdatedAt: now}

	cols := make([]string, 0, 2)
	if fields.ChatbotName != nil {
		p.ChatbotName = *fields.ChatbotName
		cols = append(cols, "chatbot_name")
	}
	if len(cols) == 0 {
		return GetProfile(ctx, db, ownerID)
	}
	cols = append(cols, "updated_at")

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return GetProfile(ctx, db, ownerID)
}
