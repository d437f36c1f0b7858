package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	listPageFn      func(context.Context, repository.PostFilter, int, int) ([]*models.Post, pagination.Page, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ListPage(ctx context.Context, filter repository.PostFilter, page, pageSize int) ([]*models.Post, pagination.Page, error) {
	return s.listPageFn(ctx, filter, page, pageSize)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
		listPageFn: func(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, pagination.Page, error) {
			return nil, pagination.Page{}, nil
		},
		countByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	createFn    func(context.Context, *models.Group) error
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	getBySlugFn func(context.Context, string) (*models.Group, error)
	listFn      func(context.Context) ([]*models.Group, error)
	deleteFn    func(context.Context, uint) error
}

func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]*models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		createFn:    func(_ context.Context, _ *models.Group) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Group, error) { return &models.Group{ID: id}, nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) { return &models.Group{Slug: slug}, nil },
		listFn:      func(_ context.Context) ([]*models.Group, error) { return nil, nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:  func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsValidation(err), "expected validation error, got %v", err)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err), "expected forbidden error, got %v", err)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err), "expected not found error, got %v", err)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopGroupRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Text: "   "})
		assertValidationError(t, err)
	})

	t.Run("forbidden characters", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Text: "profit ^ 100%"})
		assertValidationError(t, err)
	})

	t.Run("unknown group", func(t *testing.T) {
		t.Parallel()
		groupRepo := noopGroupRepo()
		groupRepo.getByIDFn = func(_ context.Context, id uint) (*models.Group, error) {
			return nil, models.NewNotFoundError("group", id)
		}
		svc2 := NewPostService(noopPostRepo(), groupRepo, noopUserRepo())
		groupID := uint(99)
		_, err := svc2.CreatePost(ctx, CreatePostInput{AuthorID: 1, Text: "hello", GroupID: &groupID})
		assertNotFoundError(t, err)
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Text: "hello", AuthorID: 1}, nil
	}

	svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
}

func TestPostService_EditPost_Authorization(t *testing.T) {
	t.Parallel()

	t.Run("non-author is forbidden", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 10, Text: "original"}, nil
		}
		updated := false
		postRepo.updateFn = func(_ context.Context, _ *models.Post) error {
			updated = true
			return nil
		}
		svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())
		_, err := svc.EditPost(context.Background(), EditPostInput{UserID: 1, PostID: 1, Text: "hijacked"})
		assertForbiddenError(t, err)
		assert.False(t, updated, "a forbidden edit must not touch the row")
	})

	t.Run("author can edit", func(t *testing.T) {
		t.Parallel()
		stored := &models.Post{ID: 1, AuthorID: 1, Text: "original"}
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			copied := *stored
			return &copied, nil
		}
		postRepo.updateFn = func(_ context.Context, p *models.Post) error {
			stored = p
			return nil
		}
		svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())
		post, err := svc.EditPost(context.Background(), EditPostInput{UserID: 1, PostID: 1, Text: "revised"})
		require.NoError(t, err)
		assert.Equal(t, "revised", post.Text)
	})

	t.Run("invalid replacement text is rejected", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1, Text: "original"}, nil
		}
		svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())
		_, err := svc.EditPost(context.Background(), EditPostInput{UserID: 1, PostID: 1, Text: "#hash"})
		assertValidationError(t, err)
	})
}

func TestPostService_DeletePost_Authorization(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 10}, nil
	}
	svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())

	err := svc.DeletePost(context.Background(), 1, 1)
	assertForbiddenError(t, err)

	err = svc.DeletePost(context.Background(), 10, 1)
	require.NoError(t, err)
}

func TestPostService_ListGroup_UnknownSlug(t *testing.T) {
	t.Parallel()

	groupRepo := noopGroupRepo()
	groupRepo.getBySlugFn = func(_ context.Context, slug string) (*models.Group, error) {
		return nil, models.NewNotFoundError("group", slug)
	}
	svc := NewPostService(noopPostRepo(), groupRepo, noopUserRepo())
	_, _, _, err := svc.ListGroup(context.Background(), "missing", 1, 10)
	assertNotFoundError(t, err)
}

func TestPostService_ListFeed_FiltersByFollower(t *testing.T) {
	t.Parallel()

	var gotFilter repository.PostFilter
	postRepo := noopPostRepo()
	postRepo.listPageFn = func(_ context.Context, filter repository.PostFilter, _, _ int) ([]*models.Post, pagination.Page, error) {
		gotFilter = filter
		return nil, pagination.Page{}, nil
	}
	svc := NewPostService(postRepo, noopGroupRepo(), noopUserRepo())

	_, _, err := svc.ListFeed(context.Background(), 42, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, gotFilter.FollowerID)
	assert.Equal(t, uint(42), *gotFilter.FollowerID)
}
