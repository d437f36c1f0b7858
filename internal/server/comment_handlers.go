package server

import (
	"strings"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /api/posts/:id/comment
// @Summary Add a comment
// @Description Attach a comment to a post and redirect back to the post detail page. Empty comments are dropped quietly.
// @Tags comments
// @Accept mpfd
// @Produce json
// @Param id path int true "Post ID"
// @Param text formData string true "Comment text"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comment [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	text := c.FormValue("text")
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err == nil {
			text = req.Text
		}
	}

	_, err = s.commentService.AddComment(c.Context(), service.AddCommentInput{
		UserID: currentUserID(c),
		PostID: id,
		Text:   text,
	})
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		// An invalid comment is dropped without complaint; the reader just
		// lands back on the post.
		if !models.IsValidation(err) {
			return respondForAppError(c, err)
		}
	}

	return c.Redirect(postDetailURL(id), fiber.StatusFound)
}
