package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type addCommentRequest struct {
	PostID uint   `form:"postId" json:"postId" binding:"required"`
	Body   string `form:"body" json:"body"`
}

type deleteCommentRequest struct {
	CommentID uint `form:"commentId" json:"commentId" binding:"required"`
}

// List 返回文章的评论，按时间正序
func (h *CommentHandler) List(c *gin.Context) {
	postID := utils.StringToUint(c.Param("postId"))
	if postID == 0 {
		response.NotFound(c, "not found")
		return
	}

	comments, err := h.comments.List(c.Request.Context(), middleware.CurrentProfile(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	if comments == nil {
		comments = []services.CommentView{}
	}
	response.Success(c, comments)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), middleware.CurrentProfile(c), req.PostID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, services.CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Username:  comment.Actor.Username(),
		FirstName: comment.Actor.Account.FirstName,
		LastName:  comment.Actor.Account.LastName,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	var req deleteCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), middleware.CurrentProfile(c), req.CommentID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
