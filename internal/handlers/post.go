package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const postsPerPage = 20

type PostHandler struct {
	posts   *services.PostService
	follows *services.FollowService
}

func NewPostHandler(posts *services.PostService, follows *services.FollowService) *PostHandler {
	return &PostHandler{posts: posts, follows: follows}
}

type postRequest struct {
	Title string `form:"title" json:"title" binding:"required,max=255"`
	Body  string `form:"body" json:"body"`
}

// Index 已发布文章列表，最新在前
func (h *PostHandler) Index(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	posts, total, err := h.posts.ListPublished(c.Request.Context(), page, postsPerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	if page < 1 {
		page = 1
	}
	response.Success(c, gin.H{
		"posts":     newPostSummaries(posts),
		"total":     total,
		"page":      page,
		"page_size": postsPerPage,
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.CurrentProfile(c), services.PostInput{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, newPostDetail(post))
}

// Detail 文章详情；作者访问自己的草稿时跳转到预览
func (h *PostHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	post, visibility, err := h.posts.Resolve(ctx, middleware.CurrentProfile(c), c.Param("username"), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if visibility == services.VisibilityRedirectDraft {
		c.Redirect(http.StatusFound, post.DraftURL())
		return
	}
	if err := h.posts.LoadCounts(ctx, post); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newPostDetail(post))
}

// Draft 作者预览
func (h *PostHandler) Draft(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.posts.Draft(ctx, middleware.CurrentProfile(c), c.Param("username"), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.posts.LoadCounts(ctx, post); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newPostDetail(post))
}

func (h *PostHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), middleware.CurrentProfile(c), c.Param("username"), c.Param("slug"), services.PostInput{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newPostDetail(post))
}

func (h *PostHandler) Publish(c *gin.Context) {
	post, err := h.posts.Publish(c.Request.Context(), middleware.CurrentProfile(c), c.Param("username"), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newPostDetail(post))
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), middleware.CurrentProfile(c), c.Param("username"), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Author 作者主页：资料、关注数和文章列表
func (h *PostHandler) Author(c *gin.Context) {
	ctx := c.Request.Context()
	requester := middleware.CurrentProfile(c)

	author, posts, err := h.posts.ListByAuthor(ctx, requester, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	followers, following, err := h.follows.Counts(ctx, author.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	isFollowing := false
	if requester != nil && requester.ID != author.ID {
		if isFollowing, err = h.follows.IsFollowing(ctx, requester.ID, author.ID); err != nil {
			respondError(c, err)
			return
		}
	}

	response.Success(c, gin.H{
		"profile":      newProfileView(author),
		"posts":        newPostSummaries(posts),
		"followers":    followers,
		"following":    following,
		"is_following": isFollowing,
	})
}
