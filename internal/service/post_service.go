// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"
	"quill/internal/validation"
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

type CreatePostInput struct {
	AuthorID  uint
	Text      string
	GroupID   *uint
	ImagePath string
}

type EditPostInput struct {
	UserID    uint
	PostID    uint
	Text      string
	GroupID   *uint
	ImagePath string
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, err
	}
	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		Text:      in.Text,
		AuthorID:  in.AuthorID,
		GroupID:   in.GroupID,
		ImagePath: in.ImagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// EditPost updates a post's text, group and image. Only the author may edit;
// anyone else gets a forbidden error. The original publication time is never
// touched.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("only the author can edit this post")
	}

	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, err
	}
	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			return nil, err
		}
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if in.ImagePath != "" {
		post.ImagePath = in.ImagePath
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("only the author can delete this post")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListGlobal returns one page of the site-wide feed, newest first.
func (s *PostService) ListGlobal(ctx context.Context, page, pageSize int) ([]*models.Post, pagination.Page, error) {
	return s.postRepo.ListPage(ctx, repository.PostFilter{}, page, pageSize)
}

// ListGroup returns one page of a group's posts plus the group itself.
func (s *PostService) ListGroup(ctx context.Context, slug string, page, pageSize int) ([]*models.Post, pagination.Page, *models.Group, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pagination.Page{}, nil, err
	}
	posts, pageInfo, err := s.postRepo.ListPage(ctx, repository.PostFilter{GroupID: &group.ID}, page, pageSize)
	if err != nil {
		return nil, pagination.Page{}, nil, err
	}
	return posts, pageInfo, group, nil
}

// ListProfile returns one page of a user's posts plus the author and their
// total post count.
func (s *PostService) ListProfile(ctx context.Context, username string, page, pageSize int) ([]*models.Post, pagination.Page, *models.User, int64, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, pagination.Page{}, nil, 0, err
	}
	posts, pageInfo, err := s.postRepo.ListPage(ctx, repository.PostFilter{AuthorID: &author.ID}, page, pageSize)
	if err != nil {
		return nil, pagination.Page{}, nil, 0, err
	}
	return posts, pageInfo, author, pageInfo.TotalItems, nil
}

// ListFeed returns one page of posts from authors the user follows.
func (s *PostService) ListFeed(ctx context.Context, userID uint, page, pageSize int) ([]*models.Post, pagination.Page, error) {
	return s.postRepo.ListPage(ctx, repository.PostFilter{FollowerID: &userID}, page, pageSize)
}
