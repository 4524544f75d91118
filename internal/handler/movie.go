package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/frame/internal/middleware"
	"github.com/user/frame/internal/model"
	"github.com/user/frame/internal/utils"
)

const (
	defaultMovieLimit = 100
	maxMovieLimit     = 100
)

// CreateMovieRequest 创建电影请求
type CreateMovieRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=200"`
	Genre       string   `json:"genre" binding:"required,notblank,max=50"`
	Duration    int      `json:"duration" binding:"required,gt=0"`
	Rating      *float64 `json:"rating" binding:"required,gte=0,lte=5"`
	Description string   `json:"description" binding:"max=1000"`
	PosterURL   string   `json:"poster_url" binding:"required,notblank"`
	IsNew       bool     `json:"is_new"`
}

// ListMovies 电影列表，支持分页与类型过滤，按创建时间倒序
func (h *Handler) ListMovies(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultMovieLimit)
	if !ok {
		return
	}
	skip, limit = clampPage(skip, limit, defaultMovieLimit, maxMovieLimit)
	filter := model.MovieFilter{Genre: c.Query("genre"), Skip: skip, Limit: limit}

	if cached, found := h.movieCache.get(filter); found {
		utils.JSON(c, http.StatusOK, cached)
		return
	}

	movies, err := h.Repos.Movie.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "list movies", err)
		return
	}
	if movies == nil {
		movies = []*model.Movie{}
	}
	h.movieCache.put(filter, movies)

	utils.JSON(c, http.StatusOK, movies)
}

// GetMovie 电影详情，浏览次数 +1
func (h *Handler) GetMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.Repos.Movie.IncrementViews(c.Request.Context(), id); err != nil {
		h.fail(c, "increment views", err)
		return
	}

	movie, err := h.Repos.Movie.FindByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get movie", err)
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	utils.JSON(c, http.StatusOK, movie)
}

// CreateMovie 创建电影（需要登录），上传者为当前用户
func (h *Handler) CreateMovie(c *gin.Context) {
	var req CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求数据: "+err.Error())
		return
	}

	uploader := middleware.GetUserID(c)
	movie := &model.Movie{
		Title:       req.Title,
		Genre:       req.Genre,
		Duration:    req.Duration,
		Rating:      *req.Rating,
		Description: req.Description,
		PosterURL:   req.PosterURL,
		IsNew:       req.IsNew,
		UserID:      &uploader,
	}

	if err := h.Repos.Movie.Create(c.Request.Context(), movie); err != nil {
		h.fail(c, "create movie", err)
		return
	}
	h.InvalidateMovieCaches()

	utils.JSON(c, http.StatusCreated, movie)
}

// DeleteMovie 删除电影，仅上传者可操作
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	movie, err := h.Repos.Movie.FindByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "find movie", err)
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}
	if movie.UserID == nil || *movie.UserID != middleware.GetUserID(c) {
		utils.Forbidden(c, "只有上传者可以删除")
		return
	}

	if err := h.Repos.Movie.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete movie", err)
		return
	}
	h.InvalidateMovieCaches()

	c.Status(http.StatusNoContent)
}

// Genres 所有类型
func (h *Handler) Genres(c *gin.Context) {
	if cached, found := utils.CacheGet(genresCacheKey); found {
		utils.JSON(c, http.StatusOK, cached)
		return
	}

	genres, err := h.Repos.Movie.Genres(c.Request.Context())
	if err != nil {
		h.fail(c, "genres", err)
		return
	}
	if genres == nil {
		genres = []string{}
	}
	utils.CacheSet(genresCacheKey, genres, 0)

	utils.JSON(c, http.StatusOK, genres)
}
