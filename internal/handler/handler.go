package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sirupsen/logrus"
	"github.com/user/frame/internal/config"
	"github.com/user/frame/internal/repository"
	"github.com/user/frame/internal/utils"
)

const genresCacheKey = "genres"

var registerOnce sync.Once

// Handler HTTP 处理器
type Handler struct {
	Repos  *repository.Repositories
	Config *config.Config

	movieCache *moviePageCache
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	registerOnce.Do(registerValidators)

	return &Handler{
		Repos:      repos,
		Config:     cfg,
		movieCache: newMoviePageCache(cfg.MovieCacheTTL),
	}
}

// registerValidators 注册自定义校验规则
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			logrus.WithError(err).Error("注册 notblank 校验失败")
		}
	}
}

// Root 服务状态
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Frame API is running",
		"version": "1.0.0",
	})
}

// InvalidateMovieCaches 清空电影相关缓存
func (h *Handler) InvalidateMovieCaches() {
	h.movieCache.flush()
	utils.CacheDelete(genresCacheKey)
}

// fail 将仓库层错误映射为 HTTP 响应
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFound(c, "")
	case errors.Is(err, repository.ErrDuplicate):
		utils.Conflict(c, "")
	case errors.Is(err, repository.ErrInvalid):
		utils.BadRequest(c, "数据不满足约束")
	default:
		logrus.WithFields(logrus.Fields{
			"component": "handler",
			"op":        op,
		}).WithError(err).Error("请求处理失败")
		utils.InternalServerError(c, "")
	}
}

// paramID 解析路径中的正整数 ID
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.BadRequest(c, fmt.Sprintf("无效的 %s", name))
		return 0, false
	}
	return id, true
}

// queryInt 解析查询参数，缺省返回 def
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.BadRequest(c, fmt.Sprintf("无效的 %s", name))
		return 0, false
	}
	return v, true
}

// clampPage 规范化分页参数
func clampPage(skip, limit, def, max int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return skip, limit
}
