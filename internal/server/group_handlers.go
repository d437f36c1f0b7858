package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetGroups handles GET /api/groups
// @Summary List groups
// @Tags groups
// @Produce json
// @Success 200 {object} object{groups=[]models.Group}
// @Router /groups [get]
func (s *Server) GetGroups(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return respondForAppError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetGroupPosts handles GET /api/group/:slug
// @Summary Group page
// @Description One page of a group's posts, newest first
// @Tags groups
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query int false "Page number"
// @Success 200 {object} object{group=models.Group,posts=[]models.Post,page=pagination.Page}
// @Failure 404 {object} models.ErrorResponse
// @Router /group/{slug} [get]
func (s *Server) GetGroupPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page := parsePage(c)

	posts, pageInfo, group, err := s.postService.ListGroup(c.Context(), slug, page, s.config.PageSize)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return respondForAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"posts": posts,
		"page":  pageInfo,
	})
}
