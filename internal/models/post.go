package models

import (
	"time"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"not null;index;uniqueIndex:idx_post_author_slug" json:"author_id"`
	Author      Profile    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Body        string     `gorm:"type:text" json:"body"` // markdown
	Slug        string     `gorm:"size:60;not null;uniqueIndex:idx_post_author_slug" json:"slug"`
	SlugBase    string     `gorm:"size:60;not null;default:'';index" json:"-"` // slug before any "-n" suffix
	Status      PostStatus `gorm:"type:varchar(10);not null;default:'draft';index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"` // set once, on publish
	UpdatedAt   time.Time  `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	LikeCount    int64 `gorm:"-" json:"like_count"`
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

func (p *Post) IsPublished() bool {
	return p.Status == PostPublished
}

// URL is the public path of the post. Requires Author.Account to be loaded.
func (p *Post) URL() string {
	return "/" + p.Author.Account.Username + "/" + p.Slug
}

// DraftURL is the author-only preview path.
func (p *Post) DraftURL() string {
	return p.URL() + "/draft"
}
