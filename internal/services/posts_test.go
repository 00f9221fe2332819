package services

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostIsDraftWithSlug(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	post := f.draft(t, alice, "My Title")

	assert.Equal(t, models.PostDraft, post.Status)
	assert.Equal(t, "my-title", post.Slug)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, alice.ID, post.AuthorID)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.posts.Create(ctx, alice, PostInput{Title: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.posts.Create(ctx, nil, PostInput{Title: "Anonymous"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestSlugsAreUniquePerAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	first := f.draft(t, alice, "My Title")
	second := f.draft(t, alice, "My Title")
	third := f.draft(t, alice, "my title!")
	other := f.draft(t, bob, "My Title")
	distinct := f.draft(t, alice, "Another Title")

	assert.Equal(t, "my-title", first.Slug)
	assert.Equal(t, "my-title-2", second.Slug)
	assert.Equal(t, "my-title-3", third.Slug)
	assert.Equal(t, "my-title", other.Slug, "slugs are scoped to the author")
	assert.Equal(t, "another-title", distinct.Slug)
}

func TestSlugFallbackAndTruncation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	assert.Equal(t, "post", f.draft(t, alice, "日本語").Slug)

	long := f.draft(t, alice, "this title is definitely much longer than the fifty character slug limit")
	assert.LessOrEqual(t, len(long.Slug), MaxSlugLength)
}

func TestSlugCollisionAfterDeleteRetries(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	f.draft(t, alice, "My Title")
	f.draft(t, alice, "My Title") // my-title-2
	require.NoError(t, f.posts.Delete(ctx, alice, "alice", "my-title"))

	// one sibling left, so the count-based suffix is -2 again, which is taken
	post := f.draft(t, alice, "My Title")
	assert.Equal(t, "my-title-3", post.Slug)
}

func TestUpdateReslugs(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	f.draft(t, alice, "My Title")
	post := f.draft(t, alice, "Draft Name")

	updated, err := f.posts.Update(ctx, alice, "alice", post.Slug, PostInput{Title: "New Title", Body: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slug)
	assert.Equal(t, "changed", updated.Body)

	// same title again keeps the slug
	again, err := f.posts.Update(ctx, alice, "alice", "new-title", PostInput{Title: "New Title"})
	require.NoError(t, err)
	assert.Equal(t, "new-title", again.Slug)

	// moving into an existing family takes the next suffix
	moved, err := f.posts.Update(ctx, alice, "alice", "new-title", PostInput{Title: "My Title"})
	require.NoError(t, err)
	assert.Equal(t, "my-title-2", moved.Slug)

	_, err = f.posts.Draft(ctx, alice, "alice", "new-title")
	assert.ErrorIs(t, err, ErrNotFound)

	// a shorter title whose slug is a prefix of the current one still re-slugs
	bob := f.register(t, "bob")
	dated := f.draft(t, bob, "My Title 2024")
	require.Equal(t, "my-title-2024", dated.Slug)
	renamed, err := f.posts.Update(ctx, bob, "bob", dated.Slug, PostInput{Title: "My Title"})
	require.NoError(t, err)
	assert.Equal(t, "my-title", renamed.Slug)
}

func TestTitleEndingInNumberIsNotASibling(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	assert.Equal(t, "my-title-2024", f.draft(t, alice, "My Title 2024").Slug)
	assert.Equal(t, "my-title", f.draft(t, alice, "My Title").Slug)
	assert.Equal(t, "my-title-2", f.draft(t, alice, "My Title").Slug)
}

func TestSlugSkipsNumberTakenByAnotherTitle(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	assert.Equal(t, "my-title-2", f.draft(t, alice, "My Title 2").Slug)
	assert.Equal(t, "my-title", f.draft(t, alice, "My Title").Slug)
	// my-title-2 belongs to the first post, so the unique index forces a retry
	assert.Equal(t, "my-title-3", f.draft(t, alice, "My Title").Slug)
}

func TestAuthorOnlyActions(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()
	post := f.draft(t, alice, "Secret")

	t.Run("non-author gets not found", func(t *testing.T) {
		_, err := f.posts.Draft(ctx, bob, "alice", post.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.posts.Update(ctx, bob, "alice", post.Slug, PostInput{Title: "Hijack"})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.posts.Publish(ctx, bob, "alice", post.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, f.posts.Delete(ctx, bob, "alice", post.Slug), ErrNotFound)
	})

	t.Run("anonymous must authenticate", func(t *testing.T) {
		_, err := f.posts.Draft(ctx, nil, "alice", post.Slug)
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
		_, err = f.posts.Publish(ctx, nil, "alice", post.Slug)
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
		assert.ErrorIs(t, f.posts.Delete(ctx, nil, "alice", post.Slug), ErrAuthenticationRequired)
	})

	t.Run("author succeeds", func(t *testing.T) {
		got, err := f.posts.Draft(ctx, alice, "alice", post.Slug)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, "Secret", got.Title)
	})

	var reloaded models.Post
	require.NoError(t, f.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, models.PostDraft, reloaded.Status)
	assert.Equal(t, "Secret", reloaded.Title)
}

func TestPublish(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()
	post := f.draft(t, alice, "Going Live")

	fixed := time.Date(2021, 6, 1, 9, 30, 0, 0, time.UTC)
	f.posts.now = func() time.Time { return fixed }

	published, err := f.posts.Publish(ctx, alice, "alice", post.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.PostPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, fixed.Equal(*published.PublishedAt))

	// second publish keeps the original timestamp
	f.posts.now = func() time.Time { return fixed.Add(time.Hour) }
	again, err := f.posts.Publish(ctx, alice, "alice", post.Slug)
	require.NoError(t, err)
	require.NotNil(t, again.PublishedAt)
	assert.True(t, fixed.Equal(again.PublishedAt.UTC()))

	var stored models.Post
	require.NoError(t, f.db.First(&stored, post.ID).Error)
	assert.Equal(t, models.PostPublished, stored.Status)
	require.NotNil(t, stored.PublishedAt)
	assert.True(t, fixed.Equal(stored.PublishedAt.UTC()))
}

func TestPublishStampsToday(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.draft(t, alice, "Today")

	published, err := f.posts.Publish(context.Background(), alice, "alice", post.Slug)
	require.NoError(t, err)

	now := time.Now()
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, now.Year(), published.PublishedAt.Year())
	assert.Equal(t, now.Month(), published.PublishedAt.Month())
	assert.Equal(t, now.Day(), published.PublishedAt.Day())
}

func TestResolveVisibility(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()

	draft := f.draft(t, alice, "Draft Post")
	live := f.published(t, alice, "Live Post")

	t.Run("published is visible to everyone", func(t *testing.T) {
		for _, requester := range []*models.Profile{nil, bob, alice} {
			post, vis, err := f.posts.Resolve(ctx, requester, "alice", live.Slug)
			require.NoError(t, err)
			assert.Equal(t, VisibilityShow, vis)
			assert.Equal(t, live.ID, post.ID)
			assert.Equal(t, "alice", post.Author.Username())
		}
	})

	t.Run("draft redirects its author", func(t *testing.T) {
		post, vis, err := f.posts.Resolve(ctx, alice, "alice", draft.Slug)
		require.NoError(t, err)
		assert.Equal(t, VisibilityRedirectDraft, vis)
		assert.Equal(t, "/alice/draft-post/draft", post.DraftURL())
	})

	t.Run("draft is not found for others", func(t *testing.T) {
		_, _, err := f.posts.Resolve(ctx, bob, "alice", draft.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = f.posts.Resolve(ctx, nil, "alice", draft.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown post or author", func(t *testing.T) {
		_, _, err := f.posts.Resolve(ctx, alice, "alice", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = f.posts.Resolve(ctx, alice, "nobody", live.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListPublishedOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	for _, year := range []int{2019, 2018, 2020} {
		f.posts.now = func() time.Time { return time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC) }
		f.published(t, alice, "Post from "+time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006"))
	}
	f.draft(t, alice, "Unpublished")

	posts, total, err := f.posts.ListPublished(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, posts, 3)

	var years []int
	for _, p := range posts {
		years = append(years, p.PublishedAt.Year())
		assert.Equal(t, "alice", p.Author.Username())
	}
	assert.Equal(t, []int{2020, 2019, 2018}, years)
}

func TestListPublishedTieBreakAndPaging(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	same := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	f.posts.now = func() time.Time { return same }
	a := f.published(t, alice, "A")
	b := f.published(t, alice, "B")
	c := f.published(t, alice, "C")

	page1, total, err := f.posts.ListPublished(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, []uint{c.ID, b.ID}, []uint{page1[0].ID, page1[1].ID})

	page2, _, err := f.posts.ListPublished(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, a.ID, page2[0].ID)
}

func TestListByAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()

	f.draft(t, alice, "Hidden")
	live := f.published(t, alice, "Shown")
	_, err := f.comments.Add(ctx, bob, live.ID, "first!")
	require.NoError(t, err)
	_, err = f.likes.Like(ctx, bob, live.ID)
	require.NoError(t, err)

	author, posts, err := f.posts.ListByAuthor(ctx, bob, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, author.ID)
	require.Len(t, posts, 1)
	assert.Equal(t, live.ID, posts[0].ID)
	assert.EqualValues(t, 1, posts[0].CommentCount)
	assert.EqualValues(t, 1, posts[0].LikeCount)

	_, own, err := f.posts.ListByAuthor(ctx, alice, "alice")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, _, err = f.posts.ListByAuthor(ctx, nil, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostRemovesEventsButKeepsNotifications(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()

	post := f.published(t, alice, "Short Lived")
	_, err := f.comments.Add(ctx, bob, post.ID, "hello")
	require.NoError(t, err)
	_, err = f.likes.Like(ctx, bob, post.ID)
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(ctx, alice, "alice", post.Slug))

	assert.EqualValues(t, 0, f.count(t, &models.Post{}))
	assert.EqualValues(t, 0, f.count(t, &models.Comment{}))
	assert.EqualValues(t, 0, f.count(t, &models.Like{}))
	assert.Len(t, f.notificationsFor(t, alice), 2)
}
