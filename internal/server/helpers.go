package server

import (
	"errors"
	"fmt"
	"net/url"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parsePage extracts the page query parameter. Anything missing or malformed
// falls back to page 1; out-of-range values are clamped later against the
// real page count, never rejected.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("post", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID, or 0 for anonymous
// requests.
func currentUserID(c *fiber.Ctx) uint {
	if userID, ok := c.Locals("userID").(uint); ok {
		return userID
	}
	return 0
}

func postDetailURL(postID uint) string {
	return fmt.Sprintf("/api/posts/%d", postID)
}

func profileURL(username string) string {
	return "/api/profile/" + url.PathEscape(username)
}

// respondForAppError maps an application error onto the right HTTP status.
func respondForAppError(c *fiber.Ctx, err error) error {
	switch {
	case models.IsNotFound(err):
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	case models.IsValidation(err):
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	case models.IsForbidden(err):
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
}
