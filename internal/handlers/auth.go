package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerRequest struct {
	Email     string `form:"email" json:"email" binding:"required,email"`
	Username  string `form:"username" json:"username" binding:"required,max=50"`
	FirstName string `form:"first_name" json:"first_name" binding:"required"`
	LastName  string `form:"last_name" json:"last_name" binding:"required"`
	Password  string `form:"password" json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register 注册并登录
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := startSession(c, profile.AccountID); err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, newProfileView(profile))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := startSession(c, profile.AccountID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, newProfileView(profile))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}

func startSession(c *gin.Context, accountID uint) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, accountID)
	return session.Save()
}
