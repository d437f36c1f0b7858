package server

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// postPage is the JSON shape shared by every paginated post listing.
type postPage struct {
	Posts []*models.Post  `json:"posts"`
	Page  pagination.Page `json:"page"`
}

// GetPosts handles GET /api/posts
// @Summary Global feed
// @Description First page of the site-wide feed, newest first. Page one is served from a short-lived cache.
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} postPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)

	// Only the first page is cached: it is the hot page, and a single fixed
	// key means every reader shares one rendering per TTL window. The
	// feed_cache_bypass flag lets a rollout slice read straight from the
	// database when cache staleness is being investigated.
	if page <= 1 && !s.flags.Enabled("feed_cache_bypass", currentUserID(c)) {
		if cached := cache.FeedGet(c.Context()); cached != nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
	}

	posts, pageInfo, err := s.postService.ListGlobal(c.Context(), page, s.config.PageSize)
	if err != nil {
		return respondForAppError(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	body, err := json.Marshal(postPage{Posts: posts, Page: pageInfo})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if pageInfo.Number <= 1 {
		cache.FeedSet(c.Context(), body)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Description A single post with its comments and the author's total post count
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post=models.Post,comments=[]models.Comment,author_post_count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondForAppError(c, err)
	}

	comments, err := s.commentService.ListComments(c.Context(), id)
	if err != nil {
		return respondForAppError(c, err)
	}

	authorPostCount, err := s.postRepo.CountByAuthor(c.Context(), post.AuthorID)
	if err != nil {
		return respondForAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":              post,
		"comments":          comments,
		"author_post_count": authorPostCount,
	})
}

// CreatePostForm handles GET /api/create. It returns the data the post form
// needs, which is just the selectable groups.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return respondForAppError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// CreatePost handles POST /api/create
// @Summary Create a post
// @Description Create a post with optional group and image; redirects to the author's profile
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param text formData string true "Post text"
// @Param group_id formData int false "Group ID"
// @Param image formData file false "Attached image"
// @Success 302
// @Failure 400 {object} models.ErrorResponse
// @Router /create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	text, groupID, err := parsePostForm(c)
	if err != nil {
		return respondForAppError(c, err)
	}

	imagePath, err := s.saveUpload(c)
	if err != nil {
		return respondForAppError(c, err)
	}

	_, err = s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:  userID,
		Text:      text,
		GroupID:   groupID,
		ImagePath: imagePath,
	})
	if err != nil {
		s.discardUpload(imagePath)
		return respondForAppError(c, err)
	}

	user, err := s.userService.GetByID(c.Context(), userID)
	if err != nil {
		return respondForAppError(c, err)
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// EditPostForm handles GET /api/posts/:id/edit. The author gets the current
// form values; anyone else is quietly bounced to the post detail page.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondForAppError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return c.Redirect(postDetailURL(id), fiber.StatusFound)
	}

	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return respondForAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"post":   post,
		"groups": groups,
	})
}

// EditPost handles POST /api/posts/:id/edit. A non-author's attempt is not
// an error; it just redirects to the detail page with the post untouched.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	text, groupID, err := parsePostForm(c)
	if err != nil {
		return respondForAppError(c, err)
	}

	imagePath, err := s.saveUpload(c)
	if err != nil {
		return respondForAppError(c, err)
	}

	_, err = s.postService.EditPost(c.Context(), service.EditPostInput{
		UserID:    currentUserID(c),
		PostID:    id,
		Text:      text,
		GroupID:   groupID,
		ImagePath: imagePath,
	})
	if err != nil {
		s.discardUpload(imagePath)
		if models.IsForbidden(err) {
			return c.Redirect(postDetailURL(id), fiber.StatusFound)
		}
		return respondForAppError(c, err)
	}

	return c.Redirect(postDetailURL(id), fiber.StatusFound)
}

// DeletePost handles POST /api/posts/:id/delete. Like edit, a non-author is
// redirected rather than shown an error.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := currentUserID(c)
	if err := s.postService.DeletePost(c.Context(), userID, id); err != nil {
		if models.IsForbidden(err) {
			return c.Redirect(postDetailURL(id), fiber.StatusFound)
		}
		return respondForAppError(c, err)
	}

	user, err := s.userService.GetByID(c.Context(), userID)
	if err != nil {
		return respondForAppError(c, err)
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// FlushFeedCache handles POST /api/cache/flush, dropping the cached feed
// page without waiting out the TTL.
func (s *Server) FlushFeedCache(c *fiber.Ctx) error {
	if err := cache.FeedFlush(c.Context()); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "feed cache flushed"})
}

// parsePostForm reads the shared create/edit form fields. It accepts both
// multipart form data (the image-capable path) and JSON bodies.
func parsePostForm(c *fiber.Ctx) (text string, groupID *uint, err error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req struct {
			Text    string `json:"text"`
			GroupID *uint  `json:"group_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return "", nil, models.NewValidationError("Invalid request body")
		}
		return req.Text, req.GroupID, nil
	}

	text = c.FormValue("text")
	if raw := c.FormValue("group_id"); raw != "" {
		parsed, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			return "", nil, models.NewValidationError("Invalid group ID")
		}
		id := uint(parsed)
		groupID = &id
	}
	return text, groupID, nil
}

// saveUpload stores the optional "image" multipart field under the media
// directory and returns its relative path. Anything that does not decode as
// an image is rejected.
func (s *Server) saveUpload(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file attached.
		return "", nil
	}

	ext, err := sniffImageFormat(fileHeader)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.config.MediaDir, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dst := filepath.Join(dir, name)
	if err := c.SaveFile(fileHeader, dst); err != nil {
		return "", models.NewInternalError(err)
	}

	return filepath.ToSlash(filepath.Join("posts", name)), nil
}

// discardUpload removes a stored upload whose post never materialized, so
// rejected creates and edits do not leave orphaned files in the media dir.
func (s *Server) discardUpload(imagePath string) {
	if imagePath == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.config.MediaDir, filepath.FromSlash(imagePath)))
}

// sniffImageFormat decodes the upload's header to determine its real format
// instead of trusting the filename.
func sniffImageFormat(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", models.NewValidationError("Attached file is not a supported image")
	}

	switch format {
	case "jpeg":
		return "jpg", nil
	case "png", "gif", "webp":
		return format, nil
	default:
		return "", models.NewValidationError("Unsupported image format")
	}
}
