package server

import (
	"strconv"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment and its legacy alias
// POST /posts/:id. The thread is append-only: there is no edit or delete
// counterpart. On success the client is redirected back to the post detail.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	text := c.FormValue("text")
	if text == "" {
		var req struct {
			Text string `json:"text"`
		}
		if parseErr := c.BodyParser(&req); parseErr == nil {
			text = req.Text
		}
	}

	_, err = s.commentService.AddComment(ctx, service.AddCommentInput{
		UserID: userID,
		PostID: postID,
		Text:   text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/posts/"+strconv.FormatUint(uint64(postID), 10), fiber.StatusFound)
}

// Comments handles listing a post's thread as part of PostDetail; the
// standalone variant exists for clients that poll the thread alone.
func (s *Server) Comments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, listErr := s.commentService.ListComments(ctx, postID)
	if listErr != nil {
		return respondServiceError(c, listErr)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}
