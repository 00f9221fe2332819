package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterKeys(t *testing.T) {
	assert.Equal(t, "inkwell:followers:42", followersKey(42))
	assert.Equal(t, "inkwell:following:42", followingKey(42))
}

func TestRedisCounterFallsBackWhenRedisIsDown(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "anna")
	b := f.register(t, "ben")
	ctx := context.Background()

	_, err := f.follows.Toggle(ctx, a, b.AccountID, ActionFollow)
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	counter := NewRedisFollowCounter(client, NewDBFollowCounter(f.db), time.Minute)
	followers, following, err := counter.Counts(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)
	assert.EqualValues(t, 0, following)

	// adjustments against an unreachable server only log
	counter.Followed(ctx, a.ID, b.ID)
	counter.Unfollowed(ctx, a.ID, b.ID)
}
