// Package services: RatingService
//
// This file implements RatingService, which governs how owners rate AI
// replies. It enforces the business rules (value range, message existence,
// ownership, AI-authorship) and applies the single permitted mutation on a
// persisted message.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pmoralis/go-ai-chat/internal/domain"
	"github.com/pmoralis/go-ai-chat/internal/repo"
)

// RatingService implements the use-case of rating an AI message.
type RatingService struct {
	// DB is the database handle used for all rating operations.
	DB *gorm.DB
}

// Rate records rating (1..5) for messageID on behalf of userID and returns
// the updated message.
//
// Semantics and validation:
//   - rating must be within 1..5; otherwise ErrInvalidRating.
//   - messageID must exist and belong to userID; otherwise ErrMessageNotFound.
//     A message owned by someone else is indistinguishable from a missing one.
//   - Only AI-authored messages can be rated; user messages yield
//     ErrForbiddenRating.
//   - Re-rating the same message overwrites the previous value (idempotent).
//
// The existence/authorship check and the update run inside a transaction.
func (s *RatingService) Rate(ctx context.Context, userID, messageID string, rating int) (*domain.Message, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var updated *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, err := repo.GetOwnedMessage(ctx, tx, messageID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		if !msg.IsAI() {
			return ErrForbiddenRating
		}
		if err := repo.UpdateMessageRating(ctx, tx, messageID, userID, rating); err != nil {
			return err
		}
		msg.Rating = &rating
		updated = msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
