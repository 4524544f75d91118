package screen

import (
	"context"

	"github.com/user/frame/internal/client"
)

// StatsSource 个人统计数据源
type StatsSource interface {
	Stats(ctx context.Context) (client.Stats, error)
}

// Session 登录会话
type Session interface {
	Clear() error
}

// Profile 个人页
type Profile struct {
	stats   StatsSource
	session Session
}

// NewProfile stats 为 nil 时显示占位统计
func NewProfile(stats StatsSource, session Session) *Profile {
	return &Profile{stats: stats, session: session}
}

// LoggedIn 是否有统计数据源
func (p *Profile) LoggedIn() bool {
	return p.stats != nil
}

// Stats 加载统计，未登录时返回全 0
func (p *Profile) Stats(ctx context.Context) (client.Stats, error) {
	if p.stats == nil {
		return client.Stats{}, nil
	}
	return p.stats.Stats(ctx)
}

// Logout 清除会话
func (p *Profile) Logout() error {
	if p.session == nil {
		return nil
	}
	return p.session.Clear()
}
