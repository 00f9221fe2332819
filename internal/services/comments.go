package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"inkwell/internal/logger"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// CommentView is the public shape of a comment in the async list.
type CommentView struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"timestamp"`
}

type CommentService struct {
	db    *gorm.DB
	posts *PostService
	cache *utils.TTLCache[uint, []CommentView]

	mu sync.Mutex
	// bumped on every invalidation; a list read across a bump is not cached
	generations map[uint]uint64
}

// NewCommentService wires the comment subsystem. cache may be nil.
func NewCommentService(db *gorm.DB, posts *PostService, cache *utils.TTLCache[uint, []CommentView]) *CommentService {
	return &CommentService{db: db, posts: posts, cache: cache, generations: make(map[uint]uint64)}
}

// Add records a comment by requester on the post and notifies the author.
// The checks run in order: post visible, requester not the author, body
// not blank.
func (s *CommentService) Add(ctx context.Context, requester *models.Profile, postID uint, body string) (*models.Comment, error) {
	if requester == nil {
		return nil, ErrAuthenticationRequired
	}

	post, err := s.posts.visibleByID(ctx, requester, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == requester.ID {
		return nil, fmt.Errorf("%w: authors cannot comment on their own posts", ErrPermissionDenied)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, validationError("comment body is required")
	}

	comment := &models.Comment{
		ActorID:     requester.ID,
		Actor:       *requester,
		RecipientID: post.AuthorID,
		Recipient:   post.Author,
		PostID:      post.ID,
		Post:        *post,
		Body:        body,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recordEvent(tx, comment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	s.invalidate(post.ID)

	logger.Ctx(ctx).Debug().
		Uint(logger.FieldPostID, post.ID).
		Uint("comment_id", comment.ID).
		Msg("comment added")
	return comment, nil
}

// Delete removes a comment written by requester. The notification the
// comment produced is kept.
func (s *CommentService) Delete(ctx context.Context, requester *models.Profile, commentID uint) error {
	if requester == nil {
		return ErrAuthenticationRequired
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}
	if comment.ActorID != requester.ID {
		return fmt.Errorf("%w: only the comment's author can delete it", ErrPermissionDenied)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	s.invalidate(comment.PostID)
	return nil
}

// List returns the comments on a post oldest first.
func (s *CommentService) List(ctx context.Context, requester *models.Profile, postID uint) ([]CommentView, error) {
	post, err := s.posts.visibleByID(ctx, requester, postID)
	if err != nil {
		return nil, err
	}

	var gen uint64
	if s.cache != nil {
		if views, ok := s.cache.Get(post.ID); ok {
			return views, nil
		}
		gen = s.generation(post.ID)
	}

	var comments []models.Comment
	err = s.db.WithContext(ctx).
		Preload("Actor.Account").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Username:  c.Actor.Account.Username,
			FirstName: c.Actor.Account.FirstName,
			LastName:  c.Actor.Account.LastName,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}

	s.fill(post.ID, gen, views)
	return views, nil
}

func (s *CommentService) generation(postID uint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[postID]
}

// fill caches views unless the post was invalidated since gen was read.
func (s *CommentService) fill(postID uint, gen uint64, views []CommentView) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[postID] == gen {
		s.cache.Set(postID, views)
	}
}

func (s *CommentService) invalidate(postID uint) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[postID]++
	s.cache.Delete(postID)
}
