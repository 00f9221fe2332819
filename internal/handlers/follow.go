package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	follows *services.FollowService
}

func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

type followRequest struct {
	UserID uint   `form:"userId" json:"userId" binding:"required"`
	Action string `form:"action" json:"action" binding:"required"`
}

// Toggle 关注/取消关注；重复请求不会改变结果
func (h *FollowHandler) Toggle(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	following, err := h.follows.Toggle(c.Request.Context(), middleware.CurrentProfile(c), req.UserID, services.FollowAction(req.Action))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user_id":   req.UserID,
		"following": following,
	})
}

func (h *FollowHandler) Followers(c *gin.Context) {
	profiles, err := h.follows.Followers(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newProfileViews(profiles))
}

func (h *FollowHandler) Following(c *gin.Context) {
	profiles, err := h.follows.Following(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newProfileViews(profiles))
}
