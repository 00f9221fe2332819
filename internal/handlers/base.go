package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/logger"
	"inkwell/internal/models"
	"inkwell/internal/response"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const excerptLength = 280

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, services.ErrPermissionDenied):
		response.Forbidden(c, msg(err))
	case errors.Is(err, services.ErrValidation):
		response.BadRequest(c, msg(err))
	case errors.Is(err, services.ErrConflict):
		response.Conflict(c, msg(err))
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, msg(err))
	default:
		_ = c.Error(err)
		logger.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		response.InternalError(c, "internal server error")
	}
}

// bindError answers a request body that failed binding.
func bindError(c *gin.Context, err error) {
	response.BadRequest(c, "invalid request: "+err.Error())
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type profileView struct {
	ID        uint   `json:"id"`
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BlogTitle string `json:"blog_title,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	Country   string `json:"country,omitempty"`
	Website   string `json:"website,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Github    string `json:"github,omitempty"`
}

func newProfileView(p *models.Profile) profileView {
	return profileView{
		ID:        p.ID,
		AccountID: p.AccountID,
		Username:  p.Username(),
		FirstName: p.Account.FirstName,
		LastName:  p.Account.LastName,
		BlogTitle: p.BlogTitle,
		Bio:       p.Bio,
		Location:  p.Location(),
		Country:   p.Country,
		Website:   p.Website,
		Twitter:   p.Twitter,
		Github:    p.Github,
	}
}

func newProfileViews(profiles []models.Profile) []profileView {
	views := make([]profileView, 0, len(profiles))
	for i := range profiles {
		views = append(views, newProfileView(&profiles[i]))
	}
	return views
}

type postView struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Status       models.PostStatus `json:"status"`
	URL          string            `json:"url"`
	Author       profileView       `json:"author"`
	Excerpt      string            `json:"excerpt,omitempty"`
	Body         string            `json:"body,omitempty"`
	BodyHTML     string            `json:"body_html,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	PublishedAt  *time.Time        `json:"published_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
	LikeCount    int64             `json:"like_count"`
	CommentCount int64             `json:"comment_count"`
}

// newPostSummary is the listing shape: excerpt instead of body.
func newPostSummary(p *models.Post) postView {
	return postView{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Status:       p.Status,
		URL:          p.URL(),
		Author:       newProfileView(&p.Author),
		Excerpt:      utils.Excerpt(p.Body, excerptLength),
		CreatedAt:    p.CreatedAt,
		PublishedAt:  p.PublishedAt,
		UpdatedAt:    p.UpdatedAt,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
	}
}

// newPostDetail carries the markdown source and its rendered HTML.
func newPostDetail(p *models.Post) postView {
	v := newPostSummary(p)
	v.Excerpt = ""
	v.Body = p.Body
	v.BodyHTML = string(utils.RenderMarkdown(p.Body))
	return v
}

func newPostSummaries(posts []models.Post) []postView {
	views := make([]postView, 0, len(posts))
	for i := range posts {
		views = append(views, newPostSummary(&posts[i]))
	}
	return views
}
