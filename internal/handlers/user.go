package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type profileRequest struct {
	BlogTitle string `form:"blog_title" json:"blog_title" binding:"max=255"`
	Bio       string `form:"bio" json:"bio" binding:"max=5000"`
	City      string `form:"city" json:"city" binding:"max=100"`
	Country   string `form:"country" json:"country" binding:"omitempty,iso3166_1_alpha2"`
	Website   string `form:"website" json:"website" binding:"omitempty,url,max=200"`
	Twitter   string `form:"twitter" json:"twitter" binding:"max=16"`
	Github    string `form:"github" json:"github" binding:"max=100"`
}

// Me 当前登录用户的资料
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, newProfileView(middleware.CurrentProfile(c)))
}

// UpdateProfile 更新个人资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CurrentProfile(c), services.ProfileInput{
		BlogTitle: req.BlogTitle,
		Bio:       req.Bio,
		City:      req.City,
		Country:   req.Country,
		Website:   req.Website,
		Twitter:   req.Twitter,
		Github:    req.Github,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newProfileView(profile))
}
