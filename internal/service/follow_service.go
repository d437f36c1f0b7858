package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow subscribes userID to the author named by username. Following
// yourself and following someone twice are both quiet no-ops.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}
	return s.followRepo.Ensure(ctx, userID, author.ID)
}

// Unfollow removes the subscription. Unfollowing someone you never followed
// is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) error {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}
	return s.followRepo.Remove(ctx, userID, author.ID)
}

// IsFollowing reports whether userID follows the author. Anonymous callers
// (userID 0) never follow anyone.
func (s *FollowService) IsFollowing(ctx context.Context, userID uint, author *models.User) (bool, error) {
	if userID == 0 || author == nil || author.ID == userID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, author.ID)
}
