package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/logger"
	"inkwell/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// FollowCounter answers follower/following counts for a profile and is
// told about edge changes after they commit.
type FollowCounter interface {
	Counts(ctx context.Context, profileID uint) (followers, following int64, err error)
	Followed(ctx context.Context, fromID, toID uint)
	Unfollowed(ctx context.Context, fromID, toID uint)
}

// DBFollowCounter counts edges directly.
type DBFollowCounter struct {
	db *gorm.DB
}

func NewDBFollowCounter(db *gorm.DB) *DBFollowCounter {
	return &DBFollowCounter{db: db}
}

func (c *DBFollowCounter) Counts(ctx context.Context, profileID uint) (int64, int64, error) {
	var followers, following int64
	if err := c.db.WithContext(ctx).Model(&models.Follower{}).
		Where("to_id = ?", profileID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count followers: %w", err)
	}
	if err := c.db.WithContext(ctx).Model(&models.Follower{}).
		Where("from_id = ?", profileID).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count following: %w", err)
	}
	return followers, following, nil
}

func (c *DBFollowCounter) Followed(context.Context, uint, uint)   {}
func (c *DBFollowCounter) Unfollowed(context.Context, uint, uint) {}

const (
	followersKeyPrefix = "inkwell:followers:"
	followingKeyPrefix = "inkwell:following:"
)

// condIncrScript adjusts a counter only when it is already cached, so a
// miss is always filled from the database.
var condIncrScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('INCRBY', KEYS[1], ARGV[1])
end
return nil
`)

// RedisFollowCounter caches counts in redis in front of a DBFollowCounter.
// Redis failures are logged and fall back to the database.
type RedisFollowCounter struct {
	client   *redis.Client
	fallback *DBFollowCounter
	ttl      time.Duration
}

func NewRedisFollowCounter(client *redis.Client, fallback *DBFollowCounter, ttl time.Duration) *RedisFollowCounter {
	return &RedisFollowCounter{client: client, fallback: fallback, ttl: ttl}
}

func followersKey(id uint) string { return followersKeyPrefix + strconv.FormatUint(uint64(id), 10) }
func followingKey(id uint) string { return followingKeyPrefix + strconv.FormatUint(uint64(id), 10) }

func (c *RedisFollowCounter) Counts(ctx context.Context, profileID uint) (int64, int64, error) {
	vals, err := c.client.MGet(ctx, followersKey(profileID), followingKey(profileID)).Result()
	if err == nil && vals[0] != nil && vals[1] != nil {
		followers, err1 := strconv.ParseInt(fmt.Sprint(vals[0]), 10, 64)
		following, err2 := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
		if err1 == nil && err2 == nil {
			return followers, following, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Ctx(ctx).Warn().Err(err).Uint(logger.FieldProfileID, profileID).Msg("redis mget follow counts")
	}

	followers, following, err := c.fallback.Counts(ctx, profileID)
	if err != nil {
		return 0, 0, err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, followersKey(profileID), followers, c.ttl)
	pipe.Set(ctx, followingKey(profileID), following, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint(logger.FieldProfileID, profileID).Msg("redis set follow counts")
	}
	return followers, following, nil
}

func (c *RedisFollowCounter) Followed(ctx context.Context, fromID, toID uint) {
	c.adjust(ctx, fromID, toID, 1)
}

func (c *RedisFollowCounter) Unfollowed(ctx context.Context, fromID, toID uint) {
	c.adjust(ctx, fromID, toID, -1)
}

func (c *RedisFollowCounter) adjust(ctx context.Context, fromID, toID uint, delta int) {
	for _, key := range []string{followersKey(toID), followingKey(fromID)} {
		err := condIncrScript.Run(ctx, c.client, []string{key}, delta).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis adjust follow count")
			// a stale counter is worse than a miss
			c.client.Del(ctx, key)
		}
	}
}

var (
	_ FollowCounter = (*DBFollowCounter)(nil)
	_ FollowCounter = (*RedisFollowCounter)(nil)
)
