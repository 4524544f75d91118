package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/frame/internal/config"
	"github.com/user/frame/internal/handler"
	"github.com/user/frame/internal/middleware"
	"github.com/user/frame/internal/model"
	"github.com/user/frame/internal/repository"
	"github.com/user/frame/internal/router"
	"github.com/user/frame/internal/utils"
)

const testSecret = "test-secret"

type testServer struct {
	engine *gin.Engine
	repos  *repository.Repositories
	h      *handler.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, testConfig(), nil)
}

func testConfig() *config.Config {
	return &config.Config{AppSecret: testSecret, JWTExpiry: 30 * time.Minute, MovieCacheTTL: time.Minute}
}

func newTestServerWith(t *testing.T, cfg *config.Config, limiter middleware.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitCache()

	repos := repository.NewMemoryRepositories()
	h := handler.NewHandler(repos, cfg)

	r, err := router.NewEngine(cfg.TrustedProxies)
	require.NoError(t, err)
	router.RegisterRoutes(r, h, limiter)
	return &testServer{engine: r, repos: repos, h: h}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "username": "viewer", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok handler.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func (s *testServer) seedMovie(t *testing.T, title, genre string, isNew bool, created time.Time) *model.Movie {
	t.Helper()
	m := &model.Movie{
		Title:       title,
		Genre:       genre,
		Duration:    120,
		Rating:      4.5,
		Description: "desc",
		PosterURL:   "https://img.example/" + title + ".jpg",
		IsNew:       isNew,
		CreatedAt:   created,
	}
	require.NoError(t, s.repos.Movie.Create(context.Background(), m))
	return m
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Frame API is running","version":"1.0.0"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@example.com")
	assert.NotEmpty(t, token)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "a@example.com", "username": "other", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "not-an-email", "username": "ab", "password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[utils.Response](t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("login ok", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "a@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		tok := decode[handler.TokenResponse](t, w)
		claims, err := middleware.ParseToken(tok.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "a@example.com", "password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		user, err := s.repos.User.FindByEmail(context.Background(), "a@example.com")
		require.NoError(t, err)
		require.NoError(t, s.repos.User.SetActive(context.Background(), user.ID, false))

		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "a@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// 已签发的令牌同样失效
		w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListMovies(t *testing.T) {
	s := newTestServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		genre := "Drama"
		if i%2 == 0 {
			genre = "Action"
		}
		s.seedMovie(t, fmt.Sprintf("m%d", i), genre, i%2 == 0, base.Add(time.Duration(i)*time.Hour))
	}

	t.Run("raw array newest first", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/movies", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, byte('['), w.Body.Bytes()[0])

		movies := decode[[]model.Movie](t, w)
		require.Len(t, movies, 5)
		assert.Equal(t, "m4", movies[0].Title)
		assert.Equal(t, "m0", movies[4].Title)
	})

	t.Run("paging", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/movies?skip=1&limit=2", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		movies := decode[[]model.Movie](t, w)
		require.Len(t, movies, 2)
		assert.Equal(t, "m3", movies[0].Title)
		assert.Equal(t, "m2", movies[1].Title)
	})

	t.Run("genre filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/movies?genre=Action", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		movies := decode[[]model.Movie](t, w)
		assert.Len(t, movies, 3)
		for _, m := range movies {
			assert.Equal(t, "Action", m.Genre)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/movies?limit=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty genre is empty array", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/movies?genre=Horror", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestGetMovie(t *testing.T) {
	s := newTestServer(t)
	m := s.seedMovie(t, "Heat", "Crime", false, time.Time{})

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", m.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[model.Movie](t, w).ViewsCount)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", m.ID), "", nil)
	assert.Equal(t, 2, decode[model.Movie](t, w).ViewsCount)

	w = s.do(t, http.MethodGet, "/api/movies/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/movies/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndDeleteMovie(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")

	body := gin.H{
		"title": "Arrival", "genre": "Sci-Fi", "duration": 116, "rating": 4.6,
		"description": "linguist", "poster_url": "https://img.example/arrival.jpg", "is_new": true,
	}

	w := s.do(t, http.MethodPost, "/api/movies", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 列表先进入缓存，创建后应失效
	w = s.do(t, http.MethodGet, "/api/movies", "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/movies", owner, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Movie](t, w)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.UserID)
	assert.True(t, created.IsNew)

	w = s.do(t, http.MethodGet, "/api/movies", "", nil)
	assert.Len(t, decode[[]model.Movie](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/genres", "", nil)
	assert.JSONEq(t, `["Sci-Fi"]`, w.Body.String())

	t.Run("validation", func(t *testing.T) {
		cases := map[string]gin.H{
			"blank title":   {"title": "   ", "genre": "Drama", "duration": 90, "rating": 3, "poster_url": "p"},
			"zero duration": {"title": "x", "genre": "Drama", "duration": 0, "rating": 3, "poster_url": "p"},
			"rating high":   {"title": "x", "genre": "Drama", "duration": 90, "rating": 5.5, "poster_url": "p"},
			"no rating":     {"title": "x", "genre": "Drama", "duration": 90, "poster_url": "p"},
		}
		for name, c := range cases {
			t.Run(name, func(t *testing.T) {
				w := s.do(t, http.MethodPost, "/api/movies", owner, c)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("zero rating accepted", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/movies", owner, gin.H{
			"title": "Flop", "genre": "Drama", "duration": 90, "rating": 0, "poster_url": "p",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	path := fmt.Sprintf("/api/movies/%d", created.ID)
	w = s.do(t, http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "fan@example.com")
	m := s.seedMovie(t, "Alien", "Horror", false, time.Time{})
	path := fmt.Sprintf("/api/favorites/%d", m.ID)

	w := s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"movie_id":%d,"favorited":false}`, m.ID), w.Body.String())

	w = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, path, token, nil)
	assert.JSONEq(t, fmt.Sprintf(`{"movie_id":%d,"favorited":true}`, m.ID), w.Body.String())

	w = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/favorites/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favorites := decode[[]model.Favorite](t, w)
	require.Len(t, favorites, 1)
	require.NotNil(t, favorites[0].Movie)
	assert.Equal(t, "Alien", favorites[0].Movie.Title)

	w = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites", token, nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHistoryAndStats(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "watcher@example.com")
	m := s.seedMovie(t, "Up", "Animation", false, time.Time{})

	w := s.do(t, http.MethodPost, "/api/history", token, gin.H{"movie_id": m.ID, "progress": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/history", token, gin.H{"movie_id": m.ID, "progress": 90})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/history", token, gin.H{"movie_id": m.ID, "progress": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/history", token, nil)
	history := decode[[]model.WatchHistory](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, 90, history[0].Progress)

	w = s.do(t, http.MethodPost, "/api/favorites/"+fmt.Sprint(m.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favorites":1,"watched":1,"uploaded":0}`, w.Body.String())
}

func TestDeleteMe(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "gone@example.com")

	w := s.do(t, http.MethodPost, "/api/movies", token, gin.H{
		"title": "Mine", "genre": "Drama", "duration": 90, "rating": 3, "poster_url": "p",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	movie := decode[model.Movie](t, w)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/favorites/%d", movie.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, w)
	assert.Equal(t, "gone@example.com", me.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 上传的电影保留，上传者置空
	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", movie.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[model.Movie](t, w).UserID)
}

func TestDeactivateMe(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "paused@example.com")

	w := s.do(t, http.MethodPost, "/api/users/me/deactivate", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "paused@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user, err := s.repos.User.FindByEmail(context.Background(), "paused@example.com")
	require.NoError(t, err)
	require.NotNil(t, user, "deactivated account keeps its data")
	assert.False(t, user.IsActive)
}

func TestAuthRejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := middleware.GenerateToken(1, "x@example.com", "other-secret", time.Minute)
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, "/api/users/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListViewsCountCaching(t *testing.T) {
	views := func(s *testServer) int {
		w := s.do(t, http.MethodGet, "/api/movies", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		movies := decode[[]model.Movie](t, w)
		require.NotEmpty(t, movies)
		return movies[len(movies)-1].ViewsCount
	}

	t.Run("cached pages lag until flushed", func(t *testing.T) {
		s := newTestServer(t)
		m := s.seedMovie(t, "Heat", "Crime", false, time.Now().Add(-time.Hour))
		assert.Equal(t, 0, views(s))

		for i := 0; i < 2; i++ {
			w := s.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", m.ID), "", nil)
			require.Equal(t, http.StatusOK, w.Code)
		}
		assert.Equal(t, 0, views(s))

		s.h.InvalidateMovieCaches()
		assert.Equal(t, 2, views(s))
	})

	t.Run("zero ttl disables page cache", func(t *testing.T) {
		cfg := testConfig()
		cfg.MovieCacheTTL = 0
		s := newTestServerWith(t, cfg, nil)
		m := s.seedMovie(t, "Heat", "Crime", false, time.Now().Add(-time.Hour))
		assert.Equal(t, 0, views(s))

		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", m.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, views(s))
	})
}

func TestAuthRateLimitUsesConnectionAddress(t *testing.T) {
	login := func(s *testServer, forwardedFor string) int {
		body := bytes.NewBufferString(`{"email":"nobody@example.com","password":"wrong-password"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.RemoteAddr = "203.0.113.9:41234"
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("forwarded header ignored by default", func(t *testing.T) {
		s := newTestServerWith(t, testConfig(), middleware.NewRateLimiter(1, 1))
		limited := 0
		for i := 0; i < 20; i++ {
			if login(s, fmt.Sprintf("10.9.0.%d", i+1)) == http.StatusTooManyRequests {
				limited++
			}
		}
		assert.GreaterOrEqual(t, limited, 18)
	})

	t.Run("trusted proxy forwards client address", func(t *testing.T) {
		cfg := testConfig()
		cfg.TrustedProxies = []string{"203.0.113.9"}
		s := newTestServerWith(t, cfg, middleware.NewRateLimiter(1, 1))
		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusUnauthorized, login(s, fmt.Sprintf("10.9.0.%d", i+1)))
		}
	})

	t.Run("invalid proxy list", func(t *testing.T) {
		_, err := router.NewEngine([]string{"not-an-ip"})
		assert.Error(t, err)
	})
}
