package router

import (
	"time"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/handler"
	"Blog_Community/internal/middleware"
	"Blog_Community/internal/repository/redis"
	"Blog_Community/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 路由需要的服务，由 main 组装
type Deps struct {
	Feeds     *service.FeedService
	Posts     *service.PostService
	Comments  *service.CommentService
	Follows   *service.FollowService
	Groups    *service.GroupService
	Users     *service.UserService
	Emails    *service.EmailService
	Tokens    *redis.TokenRepository
	PageCache cache.PageCache
	Origins   []string
	MediaRoot string
}

func InitRouter(d Deps) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	if len(d.Origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.Origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.MediaRoot != "" {
		r.Static("/media", d.MediaRoot)
	}

	feed := handler.NewFeedHandler(d.Feeds)
	post := handler.NewPostHandler(d.Posts, d.Comments)
	follow := handler.NewFollowHandler(d.Follows)
	group := handler.NewGroupHandler(d.Groups, d.PageCache)
	user := handler.NewUserHandler(d.Users)
	email := handler.NewEmailHandler(d.Emails)

	auth := middleware.AuthMiddleware(d.Tokens)
	optional := middleware.OptionalAuth(d.Tokens)

	api := r.Group("/api")

	// 帖子浏览接口，登录可选
	public := api.Group("")
	public.Use(optional)
	{
		index := []gin.HandlerFunc{feed.Index}
		if d.PageCache != nil {
			index = append([]gin.HandlerFunc{middleware.PageCache(d.PageCache, "index")}, index...)
		}
		public.GET("/posts", index...)
		public.GET("/posts/:id", feed.Detail)
		public.GET("/group/:slug", feed.Group)
		public.GET("/profile/:username", feed.Profile)
		public.GET("/groups", group.List)
	}

	// 帖子写接口
	postGroup := api.Group("/posts")
	postGroup.Use(auth)
	{
		postGroup.POST("", post.CreatePost)
		postGroup.GET("/:id/edit", post.EditForm)
		postGroup.POST("/:id/edit", post.EditPost)
		postGroup.POST("/:id/comment", post.AddComment)
	}

	// 用户关注相关接口
	followGroup := api.Group("/follow")
	followGroup.Use(auth)
	{
		followGroup.GET("", feed.Follow)
		followGroup.GET("/followings", follow.ListFollowings)
		followGroup.GET("/followers", follow.ListFollowers)
	}
	profileGroup := api.Group("/profile/:username")
	profileGroup.Use(auth)
	{
		profileGroup.POST("/follow", follow.Follow)
		profileGroup.POST("/unfollow", follow.Unfollow)
	}

	// 管理员接口
	admin := api.Group("")
	admin.Use(auth, middleware.AdminOnly())
	{
		admin.POST("/groups", group.Create)
		admin.DELETE("/groups/:slug", group.Delete)
		admin.POST("/cache/clear", group.ClearCache)
	}

	// 用户相关接口
	userGroup := api.Group("/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.GET("/login", user.LoginPage)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/logout", auth, user.Logout)
		userGroup.POST("/reset-code", email.SendResetCode)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	api.POST("/token/refresh", user.TokenRefresh)

	// 登录态接口
	authGroup := api.Group("/auth")
	authGroup.Use(auth)
	{
		authGroup.POST("/change-password", user.ChangePassword)
	}

	return r
}
