package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 字段约束，与 schema.sql 中的 CHECK 约束保持一致
const (
	MaxTitleLen       = 200
	MaxGenreLen       = 50
	MaxDescriptionLen = 1000
	MinRating         = 0.0
	MaxRating         = 5.0
)

// Movie 电影模型
type Movie struct {
	ID          int       `json:"id" db:"id" gorm:"primaryKey"`
	Title       string    `json:"title" db:"title" gorm:"size:200;not null"`
	Genre       string    `json:"genre" db:"genre" gorm:"size:50;not null;index:idx_movies_genre"`
	Duration    int       `json:"duration" db:"duration" gorm:"not null"` // 分钟
	Rating      float64   `json:"rating" db:"rating" gorm:"not null"`
	Description string    `json:"description" db:"description"`
	PosterURL   string    `json:"poster_url" db:"poster_url" gorm:"column:poster_url;not null"`
	IsNew       bool      `json:"is_new" db:"is_new" gorm:"not null;default:false"`
	ViewsCount  int       `json:"views_count" db:"views_count" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UserID      *int      `json:"uploader_id,omitempty" db:"user_id"` // 上传者，删除用户时置空
}

// Valid 检查字段是否满足存储层约束
func (m *Movie) Valid() bool {
	if strings.TrimSpace(m.Title) == "" || utf8.RuneCountInString(m.Title) > MaxTitleLen {
		return false
	}
	if strings.TrimSpace(m.Genre) == "" || utf8.RuneCountInString(m.Genre) > MaxGenreLen {
		return false
	}
	if utf8.RuneCountInString(m.Description) > MaxDescriptionLen {
		return false
	}
	return m.Duration > 0 && m.Rating >= MinRating && m.Rating <= MaxRating
}

// MovieFilter 列表查询条件
type MovieFilter struct {
	Genre string
	Skip  int
	Limit int
}
