package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/frame/internal/handler"
	"github.com/user/frame/internal/middleware"
)

// NewEngine 创建 gin 引擎
//
// 只有 proxies 中的地址转发的 X-Forwarded-For 才会被采信，为空时 ClientIP 即连接地址。
func NewEngine(proxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, authLimiter middleware.Limiter) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.MetricsHandler())
	r.GET("/", h.Root)

	requireAuth := middleware.RequireAuth(h.Config.AppSecret, h.Repos.User)

	api := r.Group("/api")

	// ==================== 认证 ====================
	auth := api.Group("/auth")
	if authLimiter != nil {
		auth.Use(middleware.RateLimit(authLimiter))
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// ==================== 电影 ====================
	api.GET("/movies", h.ListMovies)
	api.GET("/movies/:id", h.GetMovie)
	api.GET("/genres", h.Genres)
	api.POST("/movies", requireAuth, h.CreateMovie)
	api.DELETE("/movies/:id", requireAuth, h.DeleteMovie)

	// ==================== 用户中心（需要登录）====================
	user := api.Group("")
	user.Use(requireAuth)
	{
		user.GET("/users/me", h.Me)
		user.DELETE("/users/me", h.DeleteMe)
		user.POST("/users/me/deactivate", h.DeactivateMe)
		user.GET("/users/me/stats", h.Stats)

		user.GET("/favorites", h.Favorites)
		user.GET("/favorites/:id", h.FavoriteStatus)
		user.POST("/favorites/:id", h.AddFavorite)
		user.DELETE("/favorites/:id", h.RemoveFavorite)

		user.GET("/history", h.History)
		user.POST("/history", h.RecordWatch)
	}
}
