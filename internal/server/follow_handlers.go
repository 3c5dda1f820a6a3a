package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /profile/:username/follow. Re-following is a silent
// no-op; both paths land back on the author's profile.
func (s *Server) Follow(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")

	if err := s.followService.Follow(ctx, currentUserID(c), username); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/profile/"+url.PathEscape(username), fiber.StatusFound)
}

// Unfollow handles POST /profile/:username/unfollow. Unlike Follow, removing
// an edge that does not exist reports NotFound. Success lands on the global
// feed.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")

	if err := s.followService.Unfollow(ctx, currentUserID(c), username); err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect("/", fiber.StatusFound)
}
