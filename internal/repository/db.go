package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/user/frame/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQL 打开 database/sql 连接（迁移使用 lib/pq 驱动）
func OpenSQL(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	return db, nil
}

// InitDB 初始化 GORM 连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		logrus.StandardLogger(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)

	return db, nil
}

// UserStore 用户存储
type UserStore interface {
	Create(ctx context.Context, email, username, password string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

// MovieStore 电影存储
type MovieStore interface {
	List(ctx context.Context, f model.MovieFilter) ([]*model.Movie, error)
	FindByID(ctx context.Context, id int) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id int) error
	IncrementViews(ctx context.Context, id int) error
	Genres(ctx context.Context) ([]string, error)
	CountByUploader(ctx context.Context, userID int) (int, error)
	ExpireNew(ctx context.Context, before time.Time) (int64, error)
}

// FavoriteStore 收藏存储
type FavoriteStore interface {
	Add(ctx context.Context, userID, movieID int) error
	Remove(ctx context.Context, userID, movieID int) error
	IsFavorited(ctx context.Context, userID, movieID int) (bool, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*model.Favorite, error)
	CountByUser(ctx context.Context, userID int) (int, error)
}

// HistoryStore 观影历史存储
type HistoryStore interface {
	Create(ctx context.Context, h *model.WatchHistory) error
	Upsert(ctx context.Context, h *model.WatchHistory) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*model.WatchHistory, error)
	CountByUser(ctx context.Context, userID int) (int, error)
}

// Repositories 仓库集合
type Repositories struct {
	User     UserStore
	Movie    MovieStore
	Favorite FavoriteStore
	History  HistoryStore
}

// NewRepositories 创建基于 Postgres 的仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Movie:    NewMovieRepository(db),
		Favorite: NewFavoriteRepository(db),
		History:  NewHistoryRepository(db),
	}
}
