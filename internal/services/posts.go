package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/logger"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTitleLength = 255

// Visibility is the outcome of resolving a post for a reader.
type Visibility int

const (
	// VisibilityShow: the post is published and can be rendered.
	VisibilityShow Visibility = iota
	// VisibilityRedirectDraft: the requester is the author of a draft and
	// is sent to the draft view instead.
	VisibilityRedirectDraft
)

type PostInput struct {
	Title string
	Body  string
}

func (in *PostInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title is required")
	}
	if len([]rune(in.Title)) > maxTitleLength {
		return validationError("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db, now: time.Now}
}

// Create stores a new draft owned by author.
func (s *PostService) Create(ctx context.Context, author *models.Profile, in PostInput) (*models.Post, error) {
	if author == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: author.ID,
		Title:    in.Title,
		Body:     in.Body,
		Status:   models.PostDraft,
	}
	if err := s.saveWithSlug(ctx, post); err != nil {
		return nil, err
	}
	post.Author = *author

	logger.Ctx(ctx).Info().
		Uint(logger.FieldPostID, post.ID).
		Str("slug", post.Slug).
		Msg("draft created")
	return post, nil
}

// saveWithSlug assigns a slug and saves post. A concurrent writer can take
// the same slug between the count and the insert; the unique index rejects
// the loser, which retries with the next suffix.
func (s *PostService) saveWithSlug(ctx context.Context, post *models.Post) error {
	var lastErr error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slug, base, err := assignSlug(tx, post, attempt)
			if err != nil {
				return err
			}
			post.Slug, post.SlugBase = slug, base
			return tx.Omit(clause.Associations).Save(post).Error
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("failed to save post: %w", err)
		}
		lastErr = err
		logger.Ctx(ctx).Warn().Err(err).
			Str("slug", post.Slug).
			Int("attempt", attempt+1).
			Msg("slug collision, retrying")
	}
	return fmt.Errorf("%w: could not assign a unique slug: %v", ErrConflict, lastErr)
}

// find loads the post at /username/slug with its author.
func (s *PostService) find(ctx context.Context, username, slug string) (*models.Post, error) {
	tx := s.db.WithContext(ctx)
	author, err := profileByUsername(tx, username)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := tx.Where("author_id = ? AND slug = ?", author.ID, slug).First(&post).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	post.Author = *author
	return &post, nil
}

// findOwned loads a post for an author-only action. Anonymous requesters
// must authenticate; everyone else gets ErrNotFound so the post's
// existence is not revealed.
func (s *PostService) findOwned(ctx context.Context, requester *models.Profile, username, slug string) (*models.Post, error) {
	if requester == nil {
		return nil, ErrAuthenticationRequired
	}
	post, err := s.find(ctx, username, slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requester.ID {
		return nil, ErrNotFound
	}
	return post, nil
}

// Resolve applies the read rules for a single post:
// published posts are shown to anyone, a draft sends its author to the
// draft view, and a draft is not found for everyone else.
func (s *PostService) Resolve(ctx context.Context, requester *models.Profile, username, slug string) (*models.Post, Visibility, error) {
	post, err := s.find(ctx, username, slug)
	if err != nil {
		return nil, 0, err
	}
	if post.IsPublished() {
		return post, VisibilityShow, nil
	}
	if requester != nil && requester.ID == post.AuthorID {
		return post, VisibilityRedirectDraft, nil
	}
	return nil, 0, ErrNotFound
}

// Draft is the author-only preview; it serves posts in either state.
func (s *PostService) Draft(ctx context.Context, requester *models.Profile, username, slug string) (*models.Post, error) {
	return s.findOwned(ctx, requester, username, slug)
}

// Update changes title and body and re-derives the slug from the title.
func (s *PostService) Update(ctx context.Context, requester *models.Profile, username, slug string, in PostInput) (*models.Post, error) {
	post, err := s.findOwned(ctx, requester, username, slug)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Body = in.Body
	if err := s.saveWithSlug(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Publish moves a draft to published and stamps PublishedAt. There is no
// way back; publishing a published post changes nothing.
func (s *PostService) Publish(ctx context.Context, requester *models.Profile, username, slug string) (*models.Post, error) {
	post, err := s.findOwned(ctx, requester, username, slug)
	if err != nil {
		return nil, err
	}
	if post.IsPublished() {
		return post, nil
	}

	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", post.ID, models.PostDraft).
		Updates(map[string]interface{}{
			"status":       models.PostPublished,
			"published_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to publish post: %w", res.Error)
	}

	post.Status = models.PostPublished
	if res.RowsAffected > 0 {
		post.PublishedAt = &now
	} else if err := s.db.WithContext(ctx).Select("published_at").First(post, post.ID).Error; err != nil {
		// lost a race with another publish of the same post
		return nil, fmt.Errorf("failed to reload post: %w", err)
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldPostID, post.ID).Msg("post published")
	return post, nil
}

// Delete removes a post together with its comments and likes.
// Notifications already sent for them stay.
func (s *PostService) Delete(ctx context.Context, requester *models.Profile, username, slug string) error {
	post, err := s.findOwned(ctx, requester, username, slug)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// visibleByID loads a post by id for requester, treating drafts of other
// authors as missing. Author is preloaded with its account.
func (s *PostService) visibleByID(ctx context.Context, requester *models.Profile, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author.Account").First(&post, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if !post.IsPublished() && (requester == nil || requester.ID != post.AuthorID) {
		return nil, ErrNotFound
	}
	return &post, nil
}

// ListPublished returns one page of published posts, newest publication
// first; id breaks ties so paging is stable.
func (s *PostService) ListPublished(ctx context.Context, page, pageSize int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", models.PostPublished).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	err := q.Preload("Author.Account").
		Order("published_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	if err := s.fillCounts(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByAuthor returns the author's profile and posts. Drafts are included
// only when the requester is that author.
func (s *PostService) ListByAuthor(ctx context.Context, requester *models.Profile, username string) (*models.Profile, []models.Post, error) {
	author, err := profileByUsername(s.db.WithContext(ctx), username)
	if err != nil {
		return nil, nil, err
	}

	q := s.db.WithContext(ctx).Where("author_id = ?", author.ID)
	if requester == nil || requester.ID != author.ID {
		q = q.Where("status = ?", models.PostPublished)
	}

	var posts []models.Post
	err = q.Order("published_at DESC").Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list author posts: %w", err)
	}
	for i := range posts {
		posts[i].Author = *author
	}
	if err := s.fillCounts(ctx, posts); err != nil {
		return nil, nil, err
	}
	return author, posts, nil
}

// LikeCount is the number of likes on a post.
func (s *PostService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// LoadCounts fills the like and comment totals of a single post.
func (s *PostService) LoadCounts(ctx context.Context, post *models.Post) error {
	one := []models.Post{*post}
	if err := s.fillCounts(ctx, one); err != nil {
		return err
	}
	post.LikeCount, post.CommentCount = one[0].LikeCount, one[0].CommentCount
	return nil
}

type postCount struct {
	PostID uint
	Count  int64
}

// fillCounts sets LikeCount and CommentCount on posts with two grouped
// queries.
func (s *PostService) fillCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var likes, comments []postCount
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&likes).Error; err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&comments).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}

	likeMap := make(map[uint]int64, len(likes))
	for _, c := range likes {
		likeMap[c.PostID] = c.Count
	}
	commentMap := make(map[uint]int64, len(comments))
	for _, c := range comments {
		commentMap[c.PostID] = c.Count
	}
	for i := range posts {
		posts[i].LikeCount = likeMap[posts[i].ID]
		posts[i].CommentCount = commentMap[posts[i].ID]
	}
	return nil
}
