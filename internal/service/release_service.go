package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/user/frame/internal/repository"
)

// ReleaseService 新片标记过期服务
// 创建时间早于 NewReleaseDays 天的电影不再标记为新片
type ReleaseService struct {
	movies   repository.MovieStore
	days     int
	schedule string
	onExpire func()
	now      func() time.Time
	log      *logrus.Entry

	cron *cron.Cron
}

// NewReleaseService 创建新片过期服务，onExpire 在有记录被更新后调用（用于清空缓存）
func NewReleaseService(movies repository.MovieStore, days int, schedule string, onExpire func()) *ReleaseService {
	return &ReleaseService{
		movies:   movies,
		days:     days,
		schedule: schedule,
		onExpire: onExpire,
		now:      time.Now,
		log:      logrus.WithField("component", "release"),
	}
}

// Start 启动定时任务，启动时先运行一次
func (s *ReleaseService) Start() error {
	if s.days <= 0 {
		s.log.Info("NEW_RELEASE_DAYS <= 0，新片过期任务已禁用")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Run(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid release schedule %q: %w", s.schedule, err)
	}

	go s.Run(context.Background())
	s.cron.Start()
	s.log.WithField("schedule", s.schedule).Info("新片过期任务已启动")
	return nil
}

// Stop 停止定时任务并等待正在执行的任务结束
func (s *ReleaseService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Run 执行一次过期处理，返回更新的电影数量
func (s *ReleaseService) Run(ctx context.Context) int64 {
	cutoff := s.now().AddDate(0, 0, -s.days)

	affected, err := s.movies.ExpireNew(ctx, cutoff)
	if err != nil {
		s.log.WithError(err).Error("新片过期处理失败")
		return 0
	}
	if affected > 0 {
		s.log.WithField("affected", affected).Info("已取消过期新片标记")
		if s.onExpire != nil {
			s.onExpire()
		}
	}
	return affected
}
