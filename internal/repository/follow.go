package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow relationship operations
type FollowRepository interface {
	Ensure(ctx context.Context, userID, authorID uint) error
	Remove(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Ensure creates the follow edge if it does not exist. INSERT ... ON CONFLICT
// DO NOTHING makes repeated follows idempotent without a read-then-write race.
func (r *followRepository) Ensure(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (user_id, author_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, author_id) DO NOTHING`,
		userID, authorID,
	).Error
}

// Remove deletes the follow edge. Removing an absent edge is a no-op.
func (r *followRepository) Remove(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}
