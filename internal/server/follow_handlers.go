package server

import (
	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// GetFollowFeed handles GET /api/follow
// @Summary Followed-authors feed
// @Description One page of posts from the authors the logged-in user follows
// @Tags follows
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{posts=[]models.Post,page=pagination.Page}
// @Router /follow [get]
func (s *Server) GetFollowFeed(c *fiber.Ctx) error {
	page := parsePage(c)

	posts, pageInfo, err := s.postService.ListFeed(c.Context(), currentUserID(c), page, s.config.PageSize)
	if err != nil {
		return respondForAppError(c, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(struct {
		Posts []*models.Post  `json:"posts"`
		Page  pagination.Page `json:"page"`
	}{Posts: posts, Page: pageInfo})
}

// Follow handles POST /api/profile/:username/follow
// @Summary Follow an author
// @Description Subscribe to an author and return to their profile. Self-follows and duplicates are no-ops.
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username}/follow [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	username := c.Params("username")

	if err := s.followService.Follow(c.Context(), currentUserID(c), username); err != nil {
		return respondForAppError(c, err)
	}

	return c.Redirect(profileURL(username), fiber.StatusFound)
}

// Unfollow handles POST /api/profile/:username/unfollow
// @Summary Unfollow an author
// @Description Remove the subscription and return to the author's profile
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username}/unfollow [post]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	username := c.Params("username")

	if err := s.followService.Unfollow(c.Context(), currentUserID(c), username); err != nil {
		return respondForAppError(c, err)
	}

	return c.Redirect(profileURL(username), fiber.StatusFound)
}
