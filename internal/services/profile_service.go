// Package services: ProfileService
//
// This file implements ProfileService, which manages per-owner settings.
// Updates go through the typed profile repository so the set of writable
// fields is explicit.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/repo"
)

// maxChatbotNameRunes caps the display name an owner can assign.
const maxChatbotNameRunes = 50

// ProfileService implements the owner-settings use cases.
type ProfileService struct {
	DB *gorm.DB
}

// UpdateChatbotName sets the display name of the owner's assistant. The name
// is trimmed; an empty or over-long result yields ErrInvalidChatbotName.
func (s *ProfileService) UpdateChatbotName(ctx context.Context, ownerID, name string) (*domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxChatbotNameRunes {
		return nil, ErrInvalidChatbotName
	}
	return repo.UpdateOwnerProfile(ctx, s.DB, ownerID, repo.ProfileFields{ChatbotName: &name})
}
