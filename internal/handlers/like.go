package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likes *services.LikeService
}

func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type likeRequest struct {
	PostID uint   `form:"postId" json:"postId" binding:"required"`
	Action string `form:"action" json:"action" binding:"required,oneof=like unlike"`
}

// Toggle 点赞/取消点赞，返回最新的点赞数
func (h *LikeHandler) Toggle(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	requester := middleware.CurrentProfile(c)

	var (
		count int64
		err   error
	)
	if req.Action == "like" {
		count, err = h.likes.Like(ctx, requester, req.PostID)
	} else {
		count, err = h.likes.Unlike(ctx, requester, req.PostID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"post_id":    req.PostID,
		"liked":      req.Action == "like",
		"like_count": count,
	})
}
