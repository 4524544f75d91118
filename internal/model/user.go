package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id" gorm:"primaryKey"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" db:"username" gorm:"not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	IsActive     bool      `json:"is_active" db:"is_active" gorm:"not null;default:true"`
}

// UserStats 个人中心统计
type UserStats struct {
	Favorites int `json:"favorites"`
	Watched   int `json:"watched"`
	Uploaded  int `json:"uploaded"`
}
