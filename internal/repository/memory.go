package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/user/frame/internal/model"
)

// memoryDB 进程内存储，约束与 schema.sql 保持一致：
// 邮箱唯一、(用户, 电影) 唯一、CHECK 约束、删除用户级联删除收藏与历史并置空上传者。
type memoryDB struct {
	mu        sync.RWMutex
	nextID    map[string]int
	users     map[int]model.User
	emails    map[string]int
	movies    map[int]model.Movie
	favorites map[pairKey]model.Favorite
	history   map[pairKey]model.WatchHistory
}

type pairKey struct {
	userID  int
	movieID int
}

// NewMemoryRepositories 创建进程内仓库集合（本地调试与测试）
func NewMemoryRepositories() *Repositories {
	db := &memoryDB{
		nextID:    make(map[string]int),
		users:     make(map[int]model.User),
		emails:    make(map[string]int),
		movies:    make(map[int]model.Movie),
		favorites: make(map[pairKey]model.Favorite),
		history:   make(map[pairKey]model.WatchHistory),
	}
	return &Repositories{
		User:     &memoryUsers{db},
		Movie:    &memoryMovies{db},
		Favorite: &memoryFavorites{db},
		History:  &memoryHistory{db},
	}
}

func (db *memoryDB) id(table string) int {
	db.nextID[table]++
	return db.nextID[table]
}

// pairExists 外键检查，调用方需持有锁
func (db *memoryDB) pairExists(userID, movieID int) error {
	if _, ok := db.users[userID]; !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if _, ok := db.movies[movieID]; !ok {
		return fmt.Errorf("%w: movie %d", ErrNotFound, movieID)
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ==================== 用户 ====================

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) Create(_ context.Context, email, username, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.emails[email]; exists {
		return nil, fmt.Errorf("%w: email %s", ErrDuplicate, email)
	}
	user := model.User{
		ID:           r.db.id("users"),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	r.db.users[user.ID] = user
	r.db.emails[email] = user.ID
	return &user, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.emails[email]
	if !ok {
		return nil, nil
	}
	user := r.db.users[id]
	return &user, nil
}

func (r *memoryUsers) FindByID(_ context.Context, id int) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUsers) CheckPassword(user *model.User, password string) bool {
	return CheckPassword(user, password)
}

func (r *memoryUsers) SetActive(_ context.Context, id int, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return ErrNotFound
	}
	user.IsActive = active
	r.db.users[id] = user
	return nil
}

func (r *memoryUsers) Delete(_ context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.emails, user.Email)

	for k := range r.db.favorites {
		if k.userID == id {
			delete(r.db.favorites, k)
		}
	}
	for k := range r.db.history {
		if k.userID == id {
			delete(r.db.history, k)
		}
	}
	for mid, m := range r.db.movies {
		if m.UserID != nil && *m.UserID == id {
			m.UserID = nil
			r.db.movies[mid] = m
		}
	}
	return nil
}

// ==================== 电影 ====================

type memoryMovies struct{ db *memoryDB }

func (r *memoryMovies) List(_ context.Context, f model.MovieFilter) ([]*model.Movie, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	movies := make([]*model.Movie, 0, len(r.db.movies))
	for _, m := range r.db.movies {
		if f.Genre != "" && m.Genre != f.Genre {
			continue
		}
		m := m
		movies = append(movies, &m)
	}
	sort.Slice(movies, func(i, j int) bool {
		if !movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
			return movies[i].CreatedAt.After(movies[j].CreatedAt)
		}
		return movies[i].ID > movies[j].ID
	})
	return page(movies, f.Limit, f.Skip), nil
}

func (r *memoryMovies) FindByID(_ context.Context, id int) (*model.Movie, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.movies[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memoryMovies) Create(_ context.Context, m *model.Movie) error {
	if !m.Valid() {
		return fmt.Errorf("%w: movie %q", ErrInvalid, m.Title)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if m.UserID != nil {
		if _, ok := r.db.users[*m.UserID]; !ok {
			return fmt.Errorf("%w: user %d", ErrNotFound, *m.UserID)
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.ID = r.db.id("movies")
	r.db.movies[m.ID] = *m
	return nil
}

func (r *memoryMovies) Delete(_ context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.movies[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.movies, id)
	for k := range r.db.favorites {
		if k.movieID == id {
			delete(r.db.favorites, k)
		}
	}
	for k := range r.db.history {
		if k.movieID == id {
			delete(r.db.history, k)
		}
	}
	return nil
}

func (r *memoryMovies) IncrementViews(_ context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.movies[id]
	if !ok {
		return ErrNotFound
	}
	m.ViewsCount++
	r.db.movies[id] = m
	return nil
}

func (r *memoryMovies) Genres(_ context.Context) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	seen := make(map[string]struct{})
	genres := []string{}
	for _, m := range r.db.movies {
		if _, ok := seen[m.Genre]; ok {
			continue
		}
		seen[m.Genre] = struct{}{}
		genres = append(genres, m.Genre)
	}
	sort.Strings(genres)
	return genres, nil
}

func (r *memoryMovies) CountByUploader(_ context.Context, userID int) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for _, m := range r.db.movies {
		if m.UserID != nil && *m.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memoryMovies) ExpireNew(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var affected int64
	for id, m := range r.db.movies {
		if m.IsNew && m.CreatedAt.Before(before) {
			m.IsNew = false
			r.db.movies[id] = m
			affected++
		}
	}
	return affected, nil
}

// ==================== 收藏 ====================

type memoryFavorites struct{ db *memoryDB }

func (r *memoryFavorites) Add(_ context.Context, userID, movieID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.pairExists(userID, movieID); err != nil {
		return err
	}
	key := pairKey{userID, movieID}
	if _, exists := r.db.favorites[key]; exists {
		return fmt.Errorf("%w: favorite (%d, %d)", ErrDuplicate, userID, movieID)
	}
	r.db.favorites[key] = model.Favorite{
		ID:        r.db.id("favorites"),
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *memoryFavorites) Remove(_ context.Context, userID, movieID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := pairKey{userID, movieID}
	if _, exists := r.db.favorites[key]; !exists {
		return ErrNotFound
	}
	delete(r.db.favorites, key)
	return nil
}

func (r *memoryFavorites) IsFavorited(_ context.Context, userID, movieID int) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, exists := r.db.favorites[pairKey{userID, movieID}]
	return exists, nil
}

func (r *memoryFavorites) ListByUser(_ context.Context, userID, limit, offset int) ([]*model.Favorite, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var favorites []*model.Favorite
	for k, f := range r.db.favorites {
		if k.userID != userID {
			continue
		}
		f := f
		if m, ok := r.db.movies[k.movieID]; ok {
			f.Movie = &m
		}
		favorites = append(favorites, &f)
	}
	sort.Slice(favorites, func(i, j int) bool {
		if !favorites[i].CreatedAt.Equal(favorites[j].CreatedAt) {
			return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
		}
		return favorites[i].ID > favorites[j].ID
	})
	return page(favorites, limit, offset), nil
}

func (r *memoryFavorites) CountByUser(_ context.Context, userID int) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for k := range r.db.favorites {
		if k.userID == userID {
			count++
		}
	}
	return count, nil
}

// ==================== 观影历史 ====================

type memoryHistory struct{ db *memoryDB }

func (r *memoryHistory) check(h *model.WatchHistory) error {
	if !model.ValidProgress(h.Progress) {
		return fmt.Errorf("%w: progress %d", ErrInvalid, h.Progress)
	}
	if h.WatchedAt.IsZero() {
		h.WatchedAt = time.Now().UTC()
	}
	return r.db.pairExists(h.UserID, h.MovieID)
}

func (r *memoryHistory) Create(_ context.Context, h *model.WatchHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.check(h); err != nil {
		return err
	}
	key := pairKey{h.UserID, h.MovieID}
	if _, exists := r.db.history[key]; exists {
		return fmt.Errorf("%w: watch history (%d, %d)", ErrDuplicate, h.UserID, h.MovieID)
	}
	h.ID = r.db.id("watch_history")
	stored := *h
	stored.Movie = nil
	r.db.history[key] = stored
	return nil
}

func (r *memoryHistory) Upsert(_ context.Context, h *model.WatchHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.check(h); err != nil {
		return err
	}
	key := pairKey{h.UserID, h.MovieID}
	if existing, exists := r.db.history[key]; exists {
		existing.Progress = h.Progress
		existing.WatchedAt = h.WatchedAt
		r.db.history[key] = existing
		h.ID = existing.ID
		return nil
	}
	h.ID = r.db.id("watch_history")
	stored := *h
	stored.Movie = nil
	r.db.history[key] = stored
	return nil
}

func (r *memoryHistory) ListByUser(_ context.Context, userID, limit, offset int) ([]*model.WatchHistory, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var histories []*model.WatchHistory
	for k, h := range r.db.history {
		if k.userID != userID {
			continue
		}
		h := h
		if m, ok := r.db.movies[k.movieID]; ok {
			h.Movie = &m
		}
		histories = append(histories, &h)
	}
	sort.Slice(histories, func(i, j int) bool {
		if !histories[i].WatchedAt.Equal(histories[j].WatchedAt) {
			return histories[i].WatchedAt.After(histories[j].WatchedAt)
		}
		return histories[i].ID > histories[j].ID
	})
	return page(histories, limit, offset), nil
}

func (r *memoryHistory) CountByUser(_ context.Context, userID int) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for k := range r.db.history {
		if k.userID == userID {
			count++
		}
	}
	return count, nil
}
