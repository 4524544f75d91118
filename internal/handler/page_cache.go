package handler

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/user/frame/internal/model"
)

const moviePageCacheSize = 256

// moviePageCache 电影列表分页缓存，以查询条件为键
//
// 浏览次数在有效期内可能滞后于详情接口，电影数据变更时整体清空。
type moviePageCache struct {
	pages *expirable.LRU[model.MovieFilter, []*model.Movie]
}

// newMoviePageCache ttl <= 0 时不缓存
func newMoviePageCache(ttl time.Duration) *moviePageCache {
	if ttl <= 0 {
		return &moviePageCache{}
	}
	return &moviePageCache{
		pages: expirable.NewLRU[model.MovieFilter, []*model.Movie](moviePageCacheSize, nil, ttl),
	}
}

func (c *moviePageCache) get(f model.MovieFilter) ([]*model.Movie, bool) {
	if c.pages == nil {
		return nil, false
	}
	return c.pages.Get(f)
}

func (c *moviePageCache) put(f model.MovieFilter, movies []*model.Movie) {
	if c.pages == nil {
		return
	}
	c.pages.Add(f, movies)
}

func (c *moviePageCache) flush() {
	if c.pages == nil {
		return
	}
	c.pages.Purge()
}
