package services

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "janed")
	reader := f.register(t, "michaelr")
	ctx := context.Background()
	post := f.published(t, author, "Test Title")

	count, err := f.likes.Like(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = f.likes.Like(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "liking twice is idempotent")

	notifications := f.notificationsFor(t, author)
	require.Len(t, notifications, 1)
	assert.Equal(t, "michaelr liked Test Title.", notifications[0].Message)
	assert.Equal(t, models.EventLike, notifications[0].Kind)
}

func TestUnlikeKeepsNotification(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "janed")
	reader := f.register(t, "michaelr")
	ctx := context.Background()
	post := f.published(t, author, "Test Title")

	_, err := f.likes.Like(ctx, reader, post.ID)
	require.NoError(t, err)

	count, err := f.likes.Unlike(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = f.likes.Unlike(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	assert.Len(t, f.notificationsFor(t, author), 1)
}

func TestLikeChecks(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "janed")
	reader := f.register(t, "michaelr")
	ctx := context.Background()
	post := f.published(t, author, "Test Title")
	draft := f.draft(t, author, "Not Yet")

	_, err := f.likes.Like(ctx, author, post.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.likes.Like(ctx, reader, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.likes.Like(ctx, reader, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.likes.Like(ctx, nil, post.ID)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	assert.EqualValues(t, 0, f.count(t, &models.Like{}))
	assert.EqualValues(t, 0, f.count(t, &models.Notification{}))
}

func TestLikeRollsBackWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	author := f.register(t, "janed")
	reader := f.register(t, "michaelr")
	post := f.published(t, author, "Test Title")

	failNotifications(t, f.db)

	_, err := f.likes.Like(context.Background(), reader, post.ID)
	require.Error(t, err)
	assert.EqualValues(t, 0, f.count(t, &models.Like{}))
}
