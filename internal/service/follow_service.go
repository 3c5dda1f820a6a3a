package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

// FollowService manages the directed follow edges between readers and
// authors.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow subscribes the user to the author's posts. Following someone
// already followed, or yourself, is a silent no-op: no edge is written and
// the caller proceeds as if the subscription succeeded.
//
// The existence check and the insert are separate statements, so two
// concurrent requests for the same pair can both insert. That window is
// accepted: readers tolerate duplicate edges (see models.Follow).
func (s *FollowService) Follow(ctx context.Context, userID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}

	exists, err := s.followRepo.Exists(ctx, author.ID, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.followRepo.Create(ctx, &models.Follow{AuthorID: author.ID, UserID: userID}); err != nil {
		return err
	}
	observability.FollowEdgesCreated.Inc()
	return nil
}

// Unfollow removes the user's subscription to the author. Unfollowing an
// author who was never followed is a NotFound error, not a no-op.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}

	if err := s.followRepo.Delete(ctx, author.ID, userID); err != nil {
		return err
	}
	observability.FollowEdgesRemoved.Inc()
	return nil
}

// IsFollowing reports whether the user is subscribed to the author.
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.followRepo.Exists(ctx, authorID, userID)
}
