package model

import (
	"time"
)

// Favorite 收藏
type Favorite struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:uq_favorites_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:uq_favorites_user_movie"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"` // 关联查询时填充
}

// WatchHistory 观影历史，每个 (用户, 电影) 仅一条，再次观看更新进度
type WatchHistory struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:uq_watch_history_user_movie"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:uq_watch_history_user_movie"`
	Progress  int       `json:"progress" db:"progress" gorm:"not null;default:0"` // 0-100
	WatchedAt time.Time `json:"watched_at" db:"watched_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}

// TableName 表名
func (WatchHistory) TableName() string {
	return "watch_history"
}

// ValidProgress 进度是否在 0-100 之间
func ValidProgress(p int) bool {
	return p >= 0 && p <= 100
}
