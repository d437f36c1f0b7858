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
	NumPosts    int
	NumGroups   int
	ShouldClean bool
	// MaxDays is how far back seeded post timestamps are spread.
	MaxDays int
}

var defaultGroupTitles = []string{
	"Technology", "Books", "Travel", "Food", "Music",
	"Photography", "Science", "History", "Gaming", "Film",
}

// Seed populates the database with fake users, groups, posts, comments
// and a follow mesh.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 50
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 200
	}
	if opts.NumGroups <= 0 || opts.NumGroups > len(defaultGroupTitles) {
		opts.NumGroups = len(defaultGroupTitles)
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clean database: %w", err)
		}
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		// Suffix with the loop index so generated names cannot collide
		// with the unique constraints.
		n := i
		user, err := factory.CreateUser(func(u *models.User) {
			u.Username = fmt.Sprintf("%s%d", u.Username, n)
			u.Email = fmt.Sprintf("%d.%s", n, u.Email)
		})
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	groups := make([]*models.Group, 0, opts.NumGroups)
	for _, title := range defaultGroupTitles[:opts.NumGroups] {
		group, err := factory.CreateGroup(title)
		if err != nil {
			return err
		}
		groups = append(groups, group)
	}
	log.Printf("seeded %d groups", len(groups))

	// Roughly two thirds of posts land in a group, the rest are ungrouped.
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rnd.Intn(len(users))]
		post := factory.BuildPost(author)
		if factory.rnd.Intn(3) != 0 {
			post.GroupID = &groups[factory.rnd.Intn(len(groups))].ID
		}
		posts = append(posts, post)
	}
	if err := factory.CreatePostsBatch(posts); err != nil {
		return err
	}
	log.Printf("seeded %d posts", len(posts))

	// About half the posts get a couple of comments.
	comments := 0
	for _, post := range posts {
		if factory.rnd.Intn(2) == 0 {
			continue
		}
		for i := 0; i < factory.rnd.Intn(3)+1; i++ {
			commenter := users[factory.rnd.Intn(len(users))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return err
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	// Each user follows a handful of random authors.
	for _, user := range users {
		for i := 0; i < factory.rnd.Intn(5)+1; i++ {
			author := users[factory.rnd.Intn(len(users))]
			if err := factory.CreateFollow(user, author); err != nil {
				return err
			}
		}
	}
	log.Println("seeded follow mesh")

	return nil
}

// clearData removes seeded rows in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Follow{},
		&models.Comment{},
		&models.Post{},
		&models.Group{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
