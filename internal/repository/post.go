package repository

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/pagination"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero fields mean no constraint, so the
// global feed, a group page, a profile page and the followed-authors feed
// are all the same query with different filters.
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowerID *uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListPage(ctx context.Context, filter PostFilter, page, pageSize int) ([]*models.Post, pagination.Page, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// ListPage returns one page of posts, newest first, honoring the filter.
func (r *postRepository) ListPage(ctx context.Context, filter PostFilter, page, pageSize int) ([]*models.Post, pagination.Page, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC")

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.FollowerID != nil {
		query = query.Where(
			"author_id IN (SELECT author_id FROM follows WHERE user_id = ?)",
			*filter.FollowerID,
		)
	}

	var posts []*models.Post
	pageInfo, err := pagination.Paginate(query, page, pageSize, &posts)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return posts, pageInfo, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
