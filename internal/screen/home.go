package screen

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/user/frame/internal/client"
)

// MovieLister 电影列表数据源
type MovieLister interface {
	ListMovies(ctx context.Context) ([]client.Movie, error)
}

// Home 首页控制器。同一时间只保留一个请求，新的 Refresh 会取消上一个
type Home struct {
	src MovieLister
	log *logrus.Entry

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewHome 创建首页
func NewHome(src MovieLister) *Home {
	return &Home{
		src:   src,
		log:   logrus.WithField("component", "home"),
		state: State{Phase: Loading},
	}
}

// State 当前状态
func (h *Home) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Refresh 进入 Loading 并请求一次电影列表，阻塞直到请求结束
func (h *Home) Refresh(ctx context.Context) State {
	h.mu.Lock()
	if h.closed {
		defer h.mu.Unlock()
		return h.state
	}
	if h.cancel != nil {
		h.cancel()
	}
	h.seq++
	seq := h.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.state = Reduce(h.state, FetchStarted{Seq: seq})
	h.mu.Unlock()

	defer cancel()

	var ev Event
	movies, err := h.src.ListMovies(fetchCtx)
	if err != nil {
		h.log.WithError(err).WithField("seq", seq).Debug("加载电影列表失败")
		ev = FetchFailed{Seq: seq, Err: err}
	} else {
		ev = FetchSucceeded{Seq: seq, Movies: movies}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return h.state
	}
	h.state = Reduce(h.state, ev)
	return h.state
}

// Close 离开页面，取消进行中的请求
func (h *Home) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
