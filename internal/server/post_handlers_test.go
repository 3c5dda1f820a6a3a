package server

import (
	"bytes"
	"image"
	"image/png"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartPost builds a multipart form with a text field, an optional group
// and an optional file part named "image".
func multipartPost(t *testing.T, text, group, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", text))
	if group != "" {
		require.NoError(t, w.WriteField("group", group))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")

	body, contentType := multipartPost(t, "my first post", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/create", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/leo", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "my first post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.Nil(t, post.GroupID)
}

func TestCreatePostWithImage(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")

	body, contentType := multipartPost(t, "with picture", "", "cat.png", smallPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/create", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.True(t, strings.HasPrefix(post.Image, "posts/"))
	assert.True(t, strings.HasSuffix(post.Image, ".png"))
}

func TestCreatePostRejectsNonImageUpload(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")

	body, contentType := multipartPost(t, "smuggling text", "", "resume.txt", []byte("plain text, no pixels here"))
	req := httptest.NewRequest(http.MethodPost, "/create", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The rejected upload must not create a post.
	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostWithGroup(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, db.Create(group).Error)

	body, contentType := multipartPost(t, "grouped", "1", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/create", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	body, contentType := multipartPost(t, "anonymous", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/create", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/create", loc.Query().Get("next"))
}

func TestPostDetailIncludesThreadAndAuthorCount(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, app := newTestServer(t, db)

	author := createTestUser(t, db, "leo")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	post := createTestPost(t, db, author, "hello", base)
	createTestPost(t, db, author, "another", base.Add(time.Minute))
	require.NoError(t, db.Create(&models.Comment{Text: "hi", AuthorID: author.ID, PostID: &post.ID}).Error)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer func() { _ = resp.Body.Close() }()
	var detail struct {
		Post            models.Post      `json:"post"`
		AuthorPostCount int64            `json:"author_post_count"`
		Comments        []models.Comment `json:"comments"`
	}
	require.NoError(t, jsonDecode(resp, &detail))
	assert.Equal(t, "hello", detail.Post.Text)
	assert.Equal(t, int64(2), detail.AuthorPostCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "hi", detail.Comments[0].Text)
}

func TestEditPostByNonAuthorRedirectsToDetail(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	createTestPost(t, db, author, "original", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	body, contentType := multipartPost(t, "hijacked", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/posts/1/edit", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, intruder)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/posts/1", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "original", post.Text)
}

func TestEditPostByNonAuthorStoresNoAttachment(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	createTestPost(t, db, author, "original", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	body, contentType := multipartPost(t, "hijacked", "", "shot.png", smallPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/posts/1/edit", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, intruder)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/posts/1", resp.Header.Get("Location"))

	// The rejected edit's upload must not reach the media directory.
	var stored []string
	err = filepath.WalkDir(s.config.MediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			stored = append(stored, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEditPostByAuthorUpdatesText(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "author")
	created := createTestPost(t, db, author, "original", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	body, contentType := multipartPost(t, "edited", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/posts/1/edit", body)
	req.Header.Set("Content-Type", contentType)
	authorize(t, s, req, author)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post, created.ID).Error)
	assert.Equal(t, "edited", post.Text)
	// Publication date survives edits.
	assert.Equal(t, created.CreatedAt.UTC(), post.CreatedAt.UTC())
}

func TestDeletePostByAuthor(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, app := newTestServer(t, db)

	author := createTestUser(t, db, "author")
	createTestPost(t, db, author, "doomed", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodDelete, "/posts/1", nil)
	authorize(t, s, req, author)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}
