package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// StatusError 非预期的 HTTP 状态码
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Stats 个人统计
type Stats struct {
	Favorites int
	Watched   int
	Uploaded  int
}

// Client Frame API 客户端。不重试，未设置超时时沿用传输层默认值
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithToken 设置访问令牌
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout 设置请求超时，0 表示不设置
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New 创建客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken 是否已登录
func (c *Client) HasToken() bool {
	return c.token != ""
}

// ListMovies 获取电影列表，顺序与 API 返回一致
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/movies", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return DecodeMovies(body)
}

// GetMovie 获取电影详情
func (c *Client) GetMovie(ctx context.Context, id int) (*Movie, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/movies/%d", id), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return DecodeMovie(body)
}

// Login 登录，返回访问令牌
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.requestToken(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register 注册，返回访问令牌
func (c *Client) Register(ctx context.Context, email, username, password string) (string, error) {
	return c.requestToken(ctx, "/api/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
}

// AddFavorite 加入我的片单
func (c *Client) AddFavorite(ctx context.Context, movieID int) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/favorites/%d", movieID), nil, http.StatusCreated)
	return err
}

// RemoveFavorite 移出我的片单
func (c *Client) RemoveFavorite(ctx context.Context, movieID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", movieID), nil, http.StatusOK)
	return err
}

// IsFavorite 是否已在我的片单
func (c *Client) IsFavorite(ctx context.Context, movieID int) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/favorites/%d", movieID), nil, http.StatusOK)
	if err != nil {
		return false, err
	}
	v := gjson.GetBytes(body, "favorited")
	if !v.IsBool() {
		return false, &DecodeError{Index: -1, Field: "favorited", Reason: "must be a boolean"}
	}
	return v.Bool(), nil
}

// ToggleFavorite 切换收藏状态，返回切换后是否已收藏
func (c *Client) ToggleFavorite(ctx context.Context, movieID int) (bool, error) {
	err := c.AddFavorite(ctx, movieID)
	if err == nil {
		return true, nil
	}
	if !IsStatus(err, http.StatusConflict) {
		return false, err
	}
	if err := c.RemoveFavorite(ctx, movieID); err != nil {
		return false, err
	}
	return false, nil
}

// Stats 获取个人统计
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users/me/stats", nil, http.StatusOK)
	if err != nil {
		return Stats{}, err
	}
	if !gjson.ValidBytes(body) {
		return Stats{}, &DecodeError{Index: -1, Reason: "invalid JSON"}
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return Stats{}, &DecodeError{Index: -1, Reason: "expected a JSON object"}
	}

	var stats Stats
	fields := []struct {
		name string
		dst  *int
	}{
		{"favorites", &stats.Favorites},
		{"watched", &stats.Watched},
		{"uploaded", &stats.Uploaded},
	}
	for _, f := range fields {
		v, err := intField(res, f.name)
		if err != nil {
			return Stats{}, &DecodeError{Index: -1, Field: f.name, Reason: err.Error()}
		}
		*f.dst = v
	}
	return stats, nil
}

func (c *Client) requestToken(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload, http.StatusOK)
	if err != nil {
		return "", err
	}
	token := gjson.GetBytes(body, "access_token")
	if token.Type != gjson.String || token.Str == "" {
		return "", &DecodeError{Index: -1, Field: "access_token", Reason: "is missing"}
	}
	return token.Str, nil
}

// do 发送请求，状态码不等于 want 时返回 *StatusError
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, want int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Message: gjson.GetBytes(body, "message").String(),
		}
	}
	return body, nil
}
