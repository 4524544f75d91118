package repository

import (
	"context"
	"time"

	"github.com/user/frame/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create 插入观影记录，同一 (用户, 电影) 重复插入返回 ErrDuplicate
func (r *HistoryRepository) Create(ctx context.Context, h *model.WatchHistory) error {
	if h.WatchedAt.IsZero() {
		h.WatchedAt = time.Now().UTC()
	}
	return translate(r.db.WithContext(ctx).Create(h).Error)
}

// Upsert 更新或插入观影记录，再次观看覆盖进度
func (r *HistoryRepository) Upsert(ctx context.Context, h *model.WatchHistory) error {
	if h.WatchedAt.IsZero() {
		h.WatchedAt = time.Now().UTC()
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "watched_at"}),
	}).Create(h).Error)
}

// ListByUser 获取用户观影历史
func (r *HistoryRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*model.WatchHistory, error) {
	var histories []*model.WatchHistory
	err := r.db.WithContext(ctx).Preload("Movie").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&histories).Error
	return histories, err
}

// CountByUser 统计用户观影历史数量
func (r *HistoryRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WatchHistory{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
