package services

import (
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

const (
	MaxSlugLength = 50
	fallbackSlug  = "post"

	// bound on retries after a slug collides with the unique index
	maxSlugAttempts = 5
)

// assignSlug picks the slug for post from its title. The family of a base
// slug is the author's other posts whose titles produced the same base.
// With n of them the result is base when n is 0 and base-(n+1) otherwise.
// bump is added to n on retries after a collision. A post whose title
// still produces its current base keeps its slug.
func assignSlug(tx *gorm.DB, post *models.Post, bump int) (string, string, error) {
	base := utils.SlugBase(post.Title, MaxSlugLength)
	if base == "" {
		base = fallbackSlug
	}
	if post.ID != 0 && bump == 0 && post.Slug != "" && post.SlugBase == base {
		return post.Slug, base, nil
	}

	var n int64
	q := tx.Model(&models.Post{}).
		Where("author_id = ? AND slug_base = ?", post.AuthorID, base)
	if post.ID != 0 {
		q = q.Where("id <> ?", post.ID)
	}
	if err := q.Count(&n).Error; err != nil {
		return "", "", fmt.Errorf("failed to count slugs: %w", err)
	}

	n += int64(bump)
	if n == 0 {
		return base, base, nil
	}
	return fmt.Sprintf("%s-%d", base, n+1), base, nil
}
