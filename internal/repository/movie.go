package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/frame/internal/model"
	"gorm.io/gorm"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// List 获取电影列表，按创建时间倒序
func (r *MovieRepository) List(ctx context.Context, f model.MovieFilter) ([]*model.Movie, error) {
	var movies []*model.Movie
	q := r.db.WithContext(ctx).Model(&model.Movie{})
	if f.Genre != "" {
		q = q.Where("genre = ?", f.Genre)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).
		Offset(f.Skip).
		Find(&movies).Error
	return movies, err
}

// FindByID 根据 ID 查找电影，不存在返回 nil
func (r *MovieRepository) FindByID(ctx context.Context, id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Create 创建电影
func (r *MovieRepository) Create(ctx context.Context, m *model.Movie) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// Delete 删除电影，相关收藏与观影历史级联删除
func (r *MovieRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&model.Movie{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews 浏览次数 +1
func (r *MovieRepository) IncrementViews(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Model(&model.Movie{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Genres 获取所有类型（去重，按名称排序）
func (r *MovieRepository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Distinct().
		Order("genre").
		Pluck("genre", &genres).Error
	return genres, err
}

// CountByUploader 统计用户上传的电影数
func (r *MovieRepository) CountByUploader(ctx context.Context, userID int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// ExpireNew 将 before 之前创建的电影移出“新片”
func (r *MovieRepository) ExpireNew(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Movie{}).
		Where("is_new = ? AND created_at < ?", true, before).
		Update("is_new", false)
	return res.RowsAffected, res.Error
}
