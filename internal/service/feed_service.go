// Package service contains business logic for the Quill application.
package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"
)

// FeedService assembles the four post listings: the global feed, a group's
// feed, an author's profile feed, and a reader's personalized follow feed.
// All four share the same ordering and page size.
type FeedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// FeedPage is one resolved page of posts.
type FeedPage struct {
	Posts []*models.Post  `json:"posts"`
	Page  pagination.Page `json:"page"`
}

// GroupFeedPage is a group's feed page together with the group itself.
type GroupFeedPage struct {
	Group *models.Group `json:"group"`
	FeedPage
}

// ProfileFeedPage is an author's feed page together with the author, their
// lifetime post count and whether the viewer follows them.
type ProfileFeedPage struct {
	Author    *models.User `json:"author"`
	PostCount int64        `json:"post_count"`
	Following bool         `json:"following"`
	FeedPage
}

// NewFeedService returns a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// GlobalFeed returns the requested page of all posts, newest first. Out of
// range page numbers clamp rather than fail.
func (s *FeedService) GlobalFeed(ctx context.Context, page int) (*FeedPage, error) {
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	p := pagination.Resolve(page, total, pagination.PageSize)

	posts, err := s.postRepo.List(ctx, p.Size, p.Offset())
	if err != nil {
		return nil, err
	}
	return &FeedPage{Posts: posts, Page: p}, nil
}

// GroupFeed returns the requested page of a group's posts. An unknown slug
// is a NotFound error.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*GroupFeedPage, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	p := pagination.Resolve(page, total, pagination.PageSize)

	posts, err := s.postRepo.ListByGroup(ctx, group.ID, p.Size, p.Offset())
	if err != nil {
		return nil, err
	}
	return &GroupFeedPage{Group: group, FeedPage: FeedPage{Posts: posts, Page: p}}, nil
}

// ProfileFeed returns the requested page of an author's posts. viewerID is
// zero for anonymous readers, in which case Following is always false.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, viewerID uint, page int) (*ProfileFeedPage, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	total, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	p := pagination.Resolve(page, total, pagination.PageSize)

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, p.Size, p.Offset())
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != author.ID {
		following, err = s.followRepo.Exists(ctx, author.ID, viewerID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileFeedPage{
		Author:    author,
		PostCount: total,
		Following: following,
		FeedPage:  FeedPage{Posts: posts, Page: p},
	}, nil
}

// FollowFeed returns the requested page of posts by authors the user follows.
// A user following nobody gets the single empty page.
func (s *FeedService) FollowFeed(ctx context.Context, userID uint, page int) (*FeedPage, error) {
	total, err := s.postRepo.CountFollowed(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := pagination.Resolve(page, total, pagination.PageSize)

	posts, err := s.postRepo.ListFollowed(ctx, userID, p.Size, p.Offset())
	if err != nil {
		return nil, err
	}
	return &FeedPage{Posts: posts, Page: p}, nil
}
