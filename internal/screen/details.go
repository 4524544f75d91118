package screen

import (
	"context"
	"errors"

	"github.com/user/frame/internal/client"
)

var (
	// ErrPlaybackUnsupported 播放功能未实现
	ErrPlaybackUnsupported = errors.New("playback is not supported")
	// ErrLoginRequired 需要登录
	ErrLoginRequired = errors.New("login required")
)

// FavoritesToggler 我的片单查询与切换
type FavoritesToggler interface {
	IsFavorite(ctx context.Context, movieID int) (bool, error)
	ToggleFavorite(ctx context.Context, movieID int) (bool, error)
}

// Details 电影详情页
type Details struct {
	Movie     client.Movie
	favorites FavoritesToggler
}

// NewDetails favorites 为 nil 表示未登录
func NewDetails(m client.Movie, favorites FavoritesToggler) *Details {
	return &Details{Movie: m, favorites: favorites}
}

// Play 播放
func (d *Details) Play(ctx context.Context) error {
	return ErrPlaybackUnsupported
}

// InMyList 是否已在我的片单，未登录时为 false
func (d *Details) InMyList(ctx context.Context) (bool, error) {
	if d.favorites == nil {
		return false, nil
	}
	return d.favorites.IsFavorite(ctx, d.Movie.ID)
}

// ToggleMyList 加入或移出我的片单，返回切换后的状态
func (d *Details) ToggleMyList(ctx context.Context) (bool, error) {
	if d.favorites == nil {
		return false, ErrLoginRequired
	}
	return d.favorites.ToggleFavorite(ctx, d.Movie.ID)
}
