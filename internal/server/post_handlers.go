package server

import (
	"io"
	"net/url"
	"strconv"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NewPostForm handles GET /create. The response carries the group list for
// the form's group picker.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	groups, err := s.postService.ListGroups(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// CreatePost handles POST /create. The body is multipart form data: a text
// field, an optional group field and an optional image attachment. On
// success the client is redirected to the author's profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	text := c.FormValue("text")
	groupID, err := parseOptionalGroup(c.FormValue("group"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	imagePath, err := s.storeUploadedImage(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID: userID,
		Text:     text,
		GroupID:  groupID,
		Image:    imagePath,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/profile/"+url.PathEscape(post.Author.Username), fiber.StatusFound)
}

// PostDetail handles GET /posts/:id: the post, its author's post count and
// the comment thread.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	authorPostCount, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":              post,
		"author_post_count": authorPostCount,
		"comments":          comments,
	})
}

// EditPostForm handles GET /posts/:id/edit. A non-author is bounced to the
// post detail instead of seeing the edit form.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return c.Redirect("/posts/"+strconv.FormatUint(uint64(postID), 10), fiber.StatusFound)
	}

	groups, err := s.postService.ListGroups(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":   post,
		"groups": groups,
	})
}

// EditPost handles POST /posts/:id/edit. Only the author may edit; anyone
// else is redirected to the post detail.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	text := c.FormValue("text")
	groupID, err := parseOptionalGroup(c.FormValue("group"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	// Settle authorship before touching the attachment, so a non-author's
	// upload never lands on disk.
	post, err := s.postService.GetPost(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post.AuthorID != userID {
		return c.Redirect("/posts/"+strconv.FormatUint(uint64(postID), 10), fiber.StatusFound)
	}

	imagePath, err := s.storeUploadedImage(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	_, err = s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:  userID,
		PostID:  postID,
		Text:    text,
		GroupID: groupID,
		Image:   imagePath,
	})
	if err != nil {
		if models.IsUnauthorized(err) {
			return c.Redirect("/posts/"+strconv.FormatUint(uint64(postID), 10), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.Redirect("/posts/"+strconv.FormatUint(uint64(postID), 10), fiber.StatusFound)
}

// DeletePost handles DELETE /posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ServeMedia handles GET /media/*, streaming stored attachments.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	path, err := s.imageService.Resolve(c.Params("*"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.SendFile(path)
}

// storeUploadedImage validates and stores the optional "image" form file.
// Returns the empty string when the form has no attachment.
func (s *Server) storeUploadedImage(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// No file field in the form.
		return "", nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	return s.imageService.Store(service.StoreAttachmentInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	})
}

func parseOptionalGroup(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewValidationError("Invalid group")
	}
	groupID := uint(id)
	return &groupID, nil
}
