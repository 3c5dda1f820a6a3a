package server

import (
	"quill/internal/cache"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /, the global feed. Pages are served through the Redis
// page cache: a post published moments ago may be missing from a cached page
// until its TTL expires. Keys use the requested page number, before
// clamping, so stale out-of-range links stay cache-addressable.
// The page_cache flag (on by default) lets ops bypass the cache entirely.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := c.QueryInt("page", 1)

	if !s.flags.EnabledDefault("page_cache", 0, true) {
		feed, err := s.feedService.GlobalFeed(ctx, page)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(feed)
	}

	var feed service.FeedPage
	err := cache.Aside(ctx, cache.IndexPageKey(page), &feed, cache.IndexPageTTL, func() error {
		fresh, fetchErr := s.feedService.GlobalFeed(ctx, page)
		if fetchErr != nil {
			return fetchErr
		}
		feed = *fresh
		return nil
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GroupPosts handles GET /group/:slug, a group's feed. Never cached.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := c.Params("slug")
	page := c.QueryInt("page", 1)

	feed, err := s.feedService.GroupFeed(ctx, slug, page)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// Profile handles GET /profile/:username, an author's feed plus their post
// count and, for authenticated viewers, whether they follow the author.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")
	page := c.QueryInt("page", 1)

	feed, err := s.feedService.ProfileFeed(ctx, username, currentUserID(c), page)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// FollowIndex handles GET /follow, the reader's personalized feed of posts
// by authors they follow.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := c.QueryInt("page", 1)

	feed, err := s.feedService.FollowFeed(ctx, currentUserID(c), page)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}
