package services

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

type LikeService struct {
	db    *gorm.DB
	posts *PostService
}

func NewLikeService(db *gorm.DB, posts *PostService) *LikeService {
	return &LikeService{db: db, posts: posts}
}

// Like records requester's like on a post. Liking twice is a no-op and
// does not notify again. Authors cannot like their own posts.
func (s *LikeService) Like(ctx context.Context, requester *models.Profile, postID uint) (int64, error) {
	if requester == nil {
		return 0, ErrAuthenticationRequired
	}

	post, err := s.posts.visibleByID(ctx, requester, postID)
	if err != nil {
		return 0, err
	}
	if post.AuthorID == requester.ID {
		return 0, fmt.Errorf("%w: authors cannot like their own posts", ErrPermissionDenied)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("actor_id = ? AND post_id = ?", requester.ID, post.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		return recordEvent(tx, &models.Like{
			ActorID:     requester.ID,
			Actor:       *requester,
			RecipientID: post.AuthorID,
			Recipient:   post.Author,
			PostID:      post.ID,
			Post:        *post,
		})
	})
	// a concurrent like of the same post won the insert
	if err != nil && !isUniqueViolation(err) {
		return 0, fmt.Errorf("failed to like post: %w", err)
	}
	return s.posts.LikeCount(ctx, post.ID)
}

// Unlike removes requester's like if there is one.
func (s *LikeService) Unlike(ctx context.Context, requester *models.Profile, postID uint) (int64, error) {
	if requester == nil {
		return 0, ErrAuthenticationRequired
	}

	post, err := s.posts.visibleByID(ctx, requester, postID)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).
		Where("actor_id = ? AND post_id = ?", requester.ID, post.ID).
		Delete(&models.Like{}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to unlike post: %w", err)
	}
	return s.posts.LikeCount(ctx, post.ID)
}
