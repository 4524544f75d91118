package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/frame/internal/middleware"
	"github.com/user/frame/internal/model"
	"github.com/user/frame/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecordWatchRequest 观看记录请求
type RecordWatchRequest struct {
	MovieID  int `json:"movie_id" binding:"required,gt=0"`
	Progress int `json:"progress" binding:"gte=0,lte=100"`
}

// Me 当前用户
func (h *Handler) Me(c *gin.Context) {
	utils.JSON(c, http.StatusOK, middleware.CurrentUser(c))
}

// DeleteMe 注销账号，收藏与观看记录级联删除，上传的电影保留
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.Repos.User.Delete(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		h.fail(c, "delete user", err)
		return
	}
	h.InvalidateMovieCaches()
	c.Status(http.StatusNoContent)
}

// DeactivateMe 停用账号，数据保留，之后登录与已签发的令牌均失效
func (h *Handler) DeactivateMe(c *gin.Context) {
	if err := h.Repos.User.SetActive(c.Request.Context(), middleware.GetUserID(c), false); err != nil {
		h.fail(c, "deactivate user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats 个人统计
func (h *Handler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var stats model.UserStats

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		n, err := h.Repos.Favorite.CountByUser(ctx, userID)
		stats.Favorites = n
		return err
	})
	g.Go(func() error {
		n, err := h.Repos.History.CountByUser(ctx, userID)
		stats.Watched = n
		return err
	})
	g.Go(func() error {
		n, err := h.Repos.Movie.CountByUploader(ctx, userID)
		stats.Uploaded = n
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(c, "user stats", err)
		return
	}

	utils.JSON(c, http.StatusOK, stats)
}

// Favorites 我的收藏
func (h *Handler) Favorites(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}

	favorites, err := h.Repos.Favorite.ListByUser(c.Request.Context(), middleware.GetUserID(c), limit, skip)
	if err != nil {
		h.fail(c, "list favorites", err)
		return
	}
	if favorites == nil {
		favorites = []*model.Favorite{}
	}
	utils.JSON(c, http.StatusOK, favorites)
}

// FavoriteStatus 是否已收藏
func (h *Handler) FavoriteStatus(c *gin.Context) {
	movieID, ok := paramID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.Repos.Favorite.IsFavorited(c.Request.Context(), middleware.GetUserID(c), movieID)
	if err != nil {
		h.fail(c, "favorite status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movie_id": movieID, "favorited": favorited})
}

// AddFavorite 收藏
func (h *Handler) AddFavorite(c *gin.Context) {
	movieID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Repos.Favorite.Add(c.Request.Context(), middleware.GetUserID(c), movieID); err != nil {
		h.fail(c, "add favorite", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"movie_id": movieID, "favorited": true})
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	movieID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Repos.Favorite.Remove(c.Request.Context(), middleware.GetUserID(c), movieID); err != nil {
		h.fail(c, "remove favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movie_id": movieID, "favorited": false})
}

// History 观看记录
func (h *Handler) History(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}

	history, err := h.Repos.History.ListByUser(c.Request.Context(), middleware.GetUserID(c), limit, skip)
	if err != nil {
		h.fail(c, "list history", err)
		return
	}
	if history == nil {
		history = []*model.WatchHistory{}
	}
	utils.JSON(c, http.StatusOK, history)
}

// RecordWatch 记录观看进度，同一部电影重复观看时更新进度
func (h *Handler) RecordWatch(c *gin.Context) {
	var req RecordWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求数据: "+err.Error())
		return
	}

	entry := &model.WatchHistory{
		UserID:   middleware.GetUserID(c),
		MovieID:  req.MovieID,
		Progress: req.Progress,
	}
	if err := h.Repos.History.Upsert(c.Request.Context(), entry); err != nil {
		h.fail(c, "record watch", err)
		return
	}
	utils.JSON(c, http.StatusOK, entry)
}

func pageParams(c *gin.Context) (skip, limit int, ok bool) {
	if skip, ok = queryInt(c, "skip", 0); !ok {
		return
	}
	if limit, ok = queryInt(c, "limit", defaultPageSize); !ok {
		return
	}
	skip, limit = clampPage(skip, limit, defaultPageSize, maxPageSize)
	return skip, limit, true
}
