package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))
	return db
}

// newTestServer builds a Server over the given DB without touching the
// process-global Prometheus registry.
func newTestServer(t *testing.T, db *gorm.DB) (*Server, *fiber.App) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: strings.Repeat("k", 32),
		Env:       "test",
		MediaDir:  t.TempDir(),
	}
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
	}
	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, followRepo)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.postService = service.NewPostService(postRepo, groupRepo)
	s.imageService = service.NewImageService(cfg)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, text string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

func jsonDecode(resp *http.Response, dest any) error {
	return json.NewDecoder(resp.Body).Decode(dest)
}

// authorize attaches a valid session cookie for the user.
func authorize(t *testing.T, s *Server, req *http.Request, user *models.User) {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookie, Value: token})
}
