package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/user/frame/internal/config"
	"github.com/user/frame/internal/handler"
	"github.com/user/frame/internal/middleware"
	"github.com/user/frame/internal/repository"
	"github.com/user/frame/internal/router"
	"github.com/user/frame/internal/service"
	"github.com/user/frame/internal/utils"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	log := utils.InitLogger(cfg.LogLevel, cfg.Env)
	if envErr != nil {
		log.Info("未找到 .env 文件，使用系统环境变量")
	}

	// 初始化存储
	repos, closeDB, err := openStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("数据库初始化失败")
	}
	defer closeDB()

	// 初始化缓存
	utils.InitCache()

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := router.NewEngine(cfg.TrustedProxies)
	if err != nil {
		log.WithError(err).Fatal("TRUSTED_PROXIES 配置无效")
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	// 初始化 Handler
	h := handler.NewHandler(repos, cfg)

	// 登录/注册限流：配置了 REDIS_ADDR 时使用 Redis 固定窗口，否则进程内令牌桶
	stop := make(chan struct{})
	authLimiter, closeLimiter, err := newAuthLimiter(cfg, stop)
	if err != nil {
		log.WithError(err).Fatal("限流器初始化失败")
	}
	defer closeLimiter()

	// 启动新片过期任务
	releaseSvc := service.NewReleaseService(repos.Movie, cfg.NewReleaseDays, cfg.ReleaseCron, h.InvalidateMovieCaches)
	if err := releaseSvc.Start(); err != nil {
		log.WithError(err).Fatal("新片过期任务启动失败")
	}

	// 注册路由
	router.RegisterRoutes(r, h, authLimiter)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.Storage}).Info("服务器启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("正在关闭服务器...")

	close(stop)
	releaseSvc.Stop()

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("服务器强制关闭")
	}

	log.Info("服务器已退出")
}

// openStorage 根据 STORAGE 选择存储；postgres 模式先执行迁移再建立 GORM 连接
func openStorage(cfg *config.Config) (*repository.Repositories, func(), error) {
	if cfg.UseMemoryStorage() {
		logrus.Warn("使用内存存储，重启后数据将丢失")
		return repository.NewMemoryRepositories(), func() {}, nil
	}

	sqlDB, err := repository.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = repository.Migrate(ctx, sqlDB)
	sqlDB.Close()
	if err != nil {
		return nil, nil, err
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepositories(db), func() { pool.Close() }, nil
}

// newAuthLimiter AUTH_RATE_LIMIT <= 0 时不限流
func newAuthLimiter(cfg *config.Config, stop <-chan struct{}) (middleware.Limiter, func(), error) {
	if cfg.AuthRateLimit <= 0 {
		return nil, func() {}, nil
	}
	if cfg.RedisAddr != "" {
		l, err := middleware.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, "frame:auth", cfg.AuthRateLimit, time.Second)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { l.Close() }, nil
	}
	l := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateLimit*2)
	l.StartCleanup(time.Minute, stop)
	return l, func() {}, nil
}
