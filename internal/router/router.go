package router

import (
	"context"
	"net/http"

	"inkwell/internal/handlers"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Accounts      *services.AccountService
	Posts         *services.PostService
	Comments      *services.CommentService
	Likes         *services.LikeService
	Follows       *services.FollowService
	Notifications *services.NotificationService
}

type Options struct {
	Logger        zerolog.Logger
	SessionName   string
	SessionSecret string
	SessionMaxAge int // seconds
	SecureCookie  bool
	// Ping backs /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

// New builds the engine with the shared middleware chain and all routes.
func New(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   opts.SessionMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(opts.SessionName, store))
	r.Use(middleware.LoadUser(svc.Accounts))

	r.GET("/health", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(c.Request.Context()); err != nil {
				logger.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
				response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	})

	RegisterRoutes(r, svc)
	return r
}

func RegisterRoutes(r *gin.Engine, svc Services) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc.Accounts)
	userHandler := handlers.NewUserHandler(svc.Accounts)
	postHandler := handlers.NewPostHandler(svc.Posts, svc.Follows)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	likeHandler := handlers.NewLikeHandler(svc.Likes)
	followHandler := handlers.NewFollowHandler(svc.Follows)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	// 公共路由 (Public Routes)
	r.POST("/register", authHandler.Register) // 注册
	r.POST("/login", authHandler.Login)       // 登录
	r.POST("/logout", authHandler.Logout)     // 退出登录

	r.GET("/posts", postHandler.Index)                              // 已发布文章，最新在前
	r.GET("/posts/:postId/comments", commentHandler.List)           // 文章评论列表
	r.GET("/profiles/:username/followers", followHandler.Followers) // 粉丝列表
	r.GET("/profiles/:username/following", followHandler.Following) // 关注列表

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", userHandler.Me)                  // 当前用户
		authorized.POST("/profile", userHandler.UpdateProfile) // 更新个人资料
		authorized.POST("/posts", postHandler.Create)          // 新建草稿

		authorized.POST("/comments", commentHandler.Create)        // 发表评论
		authorized.POST("/comments/delete", commentHandler.Delete) // 删除评论
		authorized.POST("/likes", likeHandler.Toggle)              // 点赞/取消点赞
		authorized.POST("/follow", followHandler.Toggle)           // 关注/取消关注

		authorized.GET("/notifications", notificationHandler.List)               // 我的通知
		authorized.POST("/notifications/:id/delete", notificationHandler.Delete) // 删除单条通知

		authorized.GET("/:username/:slug/draft", postHandler.Draft)      // 草稿预览
		authorized.POST("/:username/:slug/edit", postHandler.Update)     // 编辑文章
		authorized.POST("/:username/:slug/publish", postHandler.Publish) // 发布草稿
		authorized.POST("/:username/:slug/delete", postHandler.Delete)   // 删除文章
	}

	// 作者页面放在最后，避免遮挡上面的固定路径
	r.GET("/:username", postHandler.Author)       // 作者主页
	r.GET("/:username/:slug", postHandler.Detail) // 文章详情
}
