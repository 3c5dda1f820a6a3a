package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumGroups   int
	NumPosts    int
	MaxDays     int
	SkipBcrypt  bool
	ShouldClean bool
}

// DefaultOptions returns the preset used by the seed command.
func DefaultOptions() Options {
	return Options{
		NumUsers:  25,
		NumGroups: 6,
		NumPosts:  200,
		MaxDays:   90,
	}
}

// Run populates the database with demo users, groups, posts, comments and a
// follow mesh.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	groups := make([]*models.Group, 0, opts.NumGroups)
	for i := 0; i < opts.NumGroups; i++ {
		group, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		groups = append(groups, group)
	}
	log.Printf("seeded %d groups", len(groups))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rand.Intn(len(users))]
		// Roughly a third of posts stay ungrouped.
		var group *models.Group
		if len(groups) > 0 && f.rand.Intn(3) != 0 {
			group = groups[f.rand.Intn(len(groups))]
		}
		posts = append(posts, f.BuildPost(author, group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		for n := f.rand.Intn(4); n > 0; n-- {
			commenter := users[f.rand.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	follows := 0
	for _, user := range users {
		for n := f.rand.Intn(6); n > 0; n-- {
			author := users[f.rand.Intn(len(users))]
			if err := f.CreateFollow(author, user); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("seeded follow mesh (%d attempts)", follows)

	return nil
}

// Clean removes all seeded data, children first.
func Clean(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.Group{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
