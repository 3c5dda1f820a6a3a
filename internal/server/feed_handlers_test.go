package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFeed(t *testing.T, resp *http.Response) service.FeedPage {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var feed service.FeedPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	return feed
}

func TestIndexReturnsNewestFirst(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestPost(t, db, author, "older", base)
	createTestPost(t, db, author, "newer", base.Add(time.Hour))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	feed := decodeFeed(t, resp)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, "newer", feed.Posts[0].Text)
	assert.Equal(t, "leo", feed.Posts[0].Author.Username)
}

func TestIndexClampsOutOfRangePages(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createTestPost(t, db, author, "post", base.Add(time.Duration(i)*time.Minute))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page=99", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	feed := decodeFeed(t, resp)
	assert.Equal(t, 2, feed.Page.Number)
	assert.Len(t, feed.Posts, 2)

	// Below-range numbers land on the last page too, like past-the-end ones.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/?page=-3", nil))
	require.NoError(t, err)
	feed = decodeFeed(t, resp)
	assert.Equal(t, 2, feed.Page.Number)
	assert.Len(t, feed.Posts, 2)
}

func TestGroupPostsUnknownSlug(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGroupPostsOnlyGroupMembers(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, db.Create(group).Error)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inGroup := &models.Post{Text: "grouped", AuthorID: author.ID, GroupID: &group.ID, CreatedAt: base}
	require.NoError(t, db.Create(inGroup).Error)
	createTestPost(t, db, author, "ungrouped", base.Add(time.Minute))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/cats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer func() { _ = resp.Body.Close() }()
	var feed service.GroupFeedPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "grouped", feed.Posts[0].Text)
	assert.Equal(t, "Cats", feed.Group.Title)
}

func TestProfileFollowingFlag(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	require.NoError(t, db.Create(&models.Follow{AuthorID: author.ID, UserID: viewer.ID}).Error)

	req := httptest.NewRequest(http.MethodGet, "/profile/author", nil)
	authorize(t, s, req, viewer)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer func() { _ = resp.Body.Close() }()
	var profile service.ProfileFeedPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.True(t, profile.Following)
	assert.Equal(t, "author", profile.Author.Username)

	// Anonymous viewers never see a following flag.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/profile/author", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var anon service.ProfileFeedPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&anon))
	assert.False(t, anon.Following)
}

func TestFollowIndexRedirectsAnonymousToLogin(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/follow?page=2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/follow?page=2", loc.Query().Get("next"))
}

func TestFollowIndexOnlyFollowedAuthors(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	other := createTestUser(t, db, "other")
	require.NoError(t, db.Create(&models.Follow{AuthorID: followed.ID, UserID: reader.ID}).Error)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestPost(t, db, followed, "wanted", base)
	createTestPost(t, db, other, "unwanted", base.Add(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/follow", nil)
	authorize(t, s, req, reader)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	feed := decodeFeed(t, resp)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "wanted", feed.Posts[0].Text)
}
