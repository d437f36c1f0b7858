package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile/:username
// @Summary Profile page
// @Description An author's posts with their total count and, for logged-in viewers, whether they follow the author
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Success 200 {object} object{author=models.User,posts=[]models.Post,post_count=int,following=bool,page=pagination.Page}
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePage(c)

	posts, pageInfo, author, postCount, err := s.postService.ListProfile(c.Context(), username, page, s.config.PageSize)
	if err != nil {
		return respondForAppError(c, err)
	}

	following, err := s.followService.IsFollowing(c.Context(), currentUserID(c), author)
	if err != nil {
		return respondForAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"author":     author,
		"posts":      posts,
		"post_count": postCount,
		"following":  following,
		"page":       pageInfo,
	})
}
