package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeCounter counts through the database and remembers the edge
// notifications it received.
type fakeCounter struct {
	*DBFollowCounter
	followed   [][2]uint
	unfollowed [][2]uint
}

func (c *fakeCounter) Followed(_ context.Context, from, to uint) {
	c.followed = append(c.followed, [2]uint{from, to})
}

func (c *fakeCounter) Unfollowed(_ context.Context, from, to uint) {
	c.unfollowed = append(c.unfollowed, [2]uint{from, to})
}

type fixture struct {
	db            *gorm.DB
	accounts      *AccountService
	posts         *PostService
	comments      *CommentService
	likes         *LikeService
	follows       *FollowService
	notifications *NotificationService
	counter       *fakeCounter
	cache         *utils.TTLCache[uint, []CommentView]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// one connection: every :memory: connection is its own database
	conn, err := db.Open(db.Config{
		Driver:       "sqlite",
		DSN:          "file::memory:?_foreign_keys=on",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)

	cache, err := utils.NewTTLCache[uint, []CommentView](16, time.Minute)
	require.NoError(t, err)

	counter := &fakeCounter{DBFollowCounter: NewDBFollowCounter(conn)}
	posts := NewPostService(conn)
	return &fixture{
		db:            conn,
		accounts:      NewAccountService(conn),
		posts:         posts,
		comments:      NewCommentService(conn, posts, cache),
		likes:         NewLikeService(conn, posts),
		follows:       NewFollowService(conn, counter),
		notifications: NewNotificationService(conn),
		counter:       counter,
		cache:         cache,
	}
}

func (f *fixture) register(t *testing.T, username string) *models.Profile {
	t.Helper()
	p, err := f.accounts.Register(context.Background(), RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First " + username,
		LastName:  "Last " + username,
		Password:  "password123",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) draft(t *testing.T, author *models.Profile, title string) *models.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), author, PostInput{Title: title, Body: "post body"})
	require.NoError(t, err)
	return post
}

func (f *fixture) published(t *testing.T, author *models.Profile, title string) *models.Post {
	t.Helper()
	post := f.draft(t, author, title)
	post, err := f.posts.Publish(context.Background(), author, author.Username(), post.Slug)
	require.NoError(t, err)
	return post
}

func (f *fixture) notificationsFor(t *testing.T, p *models.Profile) []models.Notification {
	t.Helper()
	list, err := f.notifications.List(context.Background(), p, 100)
	require.NoError(t, err)
	return list
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

// failNotifications makes every insert into notifications fail.
func failNotifications(t *testing.T, conn *gorm.DB) {
	t.Helper()
	name := fmt.Sprintf("test:fail_notifications:%s", t.Name())
	err := conn.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "notifications" {
			_ = tx.AddError(fmt.Errorf("notification store unavailable"))
		}
	})
	require.NoError(t, err)
}
