package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/frame/internal/middleware"
	"github.com/user/frame/internal/model"
	"github.com/user/frame/internal/repository"
	"github.com/user/frame/internal/utils"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 访问令牌
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register 注册并直接返回令牌
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求数据: "+err.Error())
		return
	}

	// 检查邮箱是否已存在
	existing, err := h.Repos.User.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	if existing != nil {
		utils.BadRequest(c, "该邮箱已被注册")
		return
	}

	user, err := h.Repos.User.Create(c.Request.Context(), req.Email, req.Username, req.Password)
	if errors.Is(err, repository.ErrDuplicate) {
		utils.BadRequest(c, "该邮箱已被注册")
		return
	}
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	h.respondToken(c, user)
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求数据: "+err.Error())
		return
	}

	user, err := h.Repos.User.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	// 停用账号与密码错误返回相同提示
	if user == nil || !user.IsActive || !h.Repos.User.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	h.respondToken(c, user)
}

func (h *Handler) respondToken(c *gin.Context, user *model.User) {
	token, err := middleware.GenerateToken(user.ID, user.Email, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		h.fail(c, "generate token", err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
