package screen

import (
	"errors"

	"github.com/user/frame/internal/client"
)

// Phase 页面加载阶段
type Phase int

const (
	Loading Phase = iota
	Loaded
	Error
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// 错误提示
const (
	MsgLoadFailed = "failed to load movies"
	MsgMalformed  = "received malformed movie data"
)

// State 首页状态，只能通过 Reduce 转换
type State struct {
	Phase   Phase
	Movies  []client.Movie
	Message string

	seq uint64
}

// Event 状态事件
type Event interface {
	sequence() uint64
}

// FetchStarted 开始请求
type FetchStarted struct{ Seq uint64 }

// FetchSucceeded 请求成功
type FetchSucceeded struct {
	Seq    uint64
	Movies []client.Movie
}

// FetchFailed 请求失败
type FetchFailed struct {
	Seq uint64
	Err error
}

func (e FetchStarted) sequence() uint64   { return e.Seq }
func (e FetchSucceeded) sequence() uint64 { return e.Seq }
func (e FetchFailed) sequence() uint64    { return e.Seq }

// Reduce 状态转换。序号落后于当前请求的结果会被忽略
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case FetchStarted:
		if ev.Seq <= s.seq {
			return s
		}
		return State{Phase: Loading, seq: ev.Seq}

	case FetchSucceeded:
		if ev.Seq != s.seq || s.Phase != Loading {
			return s
		}
		movies := make([]client.Movie, len(ev.Movies))
		copy(movies, ev.Movies)
		return State{Phase: Loaded, Movies: movies, seq: s.seq}

	case FetchFailed:
		if ev.Seq != s.seq || s.Phase != Loading {
			return s
		}
		return State{Phase: Error, Message: ErrorMessage(ev.Err), seq: s.seq}
	}
	return s
}

// ErrorMessage 面向用户的错误提示
func ErrorMessage(err error) string {
	var de *client.DecodeError
	if errors.As(err, &de) {
		return MsgMalformed + ": " + de.Error()
	}
	return MsgLoadFailed
}

// Seq 当前请求序号
func (s State) Seq() uint64 {
	return s.seq
}

// PopularNow 全部电影，保持 API 返回顺序
func (s State) PopularNow() []client.Movie {
	if s.Phase != Loaded {
		return nil
	}
	return s.Movies
}

// NewReleases is_new 为 true 的电影
func (s State) NewReleases() []client.Movie {
	if s.Phase != Loaded {
		return nil
	}
	out := []client.Movie{}
	for _, m := range s.Movies {
		if m.IsNew {
			out = append(out, m)
		}
	}
	return out
}

// Hero 首页大图，列表为空时 ok 为 false
func (s State) Hero() (client.Movie, bool) {
	if s.Phase != Loaded || len(s.Movies) == 0 {
		return client.Movie{}, false
	}
	return s.Movies[0], true
}
