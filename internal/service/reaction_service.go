package service

import (
	"context"

	"townsquare/internal/cache"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/repository"
)

// ReactionService implements like/dislike toggling for every reactable
// content type. The same engine serves events, news, listings and
// comments; targets are resolved through the content registry.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
	registry     repository.ContentRegistry
}

type ToggleReactionInput struct {
	UserID      uint
	ContentType models.ContentType
	ContentID   uint
	Kind        models.ReactionKind
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	registry repository.ContentRegistry,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		registry:     registry,
	}
}

// Toggle applies one press of a reaction button. Pressing the same
// button twice removes the reaction; pressing the opposite one switches
// it. The returned summary reflects the state after the press.
func (s *ReactionService) Toggle(ctx context.Context, in ToggleReactionInput) (*models.ReactionSummary, error) {
	if !in.ContentType.Valid() {
		return nil, models.NewValidationError("Unknown content type")
	}
	if !in.Kind.Valid() {
		return nil, models.NewValidationError("Reaction must be like or dislike")
	}

	exists, err := s.registry.Exists(ctx, in.ContentType, in.ContentID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	summary, err := s.reactionRepo.Toggle(ctx, in.UserID, in.ContentType, in.ContentID, in.Kind)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.ReactionToggles.WithLabelValues(string(in.ContentType), string(in.Kind)).Inc()
	cache.InvalidateReactions(ctx, string(in.ContentType), in.ContentID)
	return summary, nil
}

// Summary returns current like/dislike counts plus the caller's own
// reaction. userID zero means anonymous.
func (s *ReactionService) Summary(ctx context.Context, contentType models.ContentType, contentID uint, userID uint) (*models.ReactionSummary, error) {
	if !contentType.Valid() {
		return nil, models.NewValidationError("Unknown content type")
	}

	exists, err := s.registry.Exists(ctx, contentType, contentID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", contentID)
	}

	summary, err := s.reactionRepo.Summary(ctx, contentType, contentID, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return summary, nil
}
