package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/frame/internal/model"
	"github.com/user/frame/internal/repository"
)

func createMovie(t *testing.T, repos *repository.Repositories, title string, isNew bool, created time.Time) *model.Movie {
	t.Helper()
	m := &model.Movie{
		Title:     title,
		Genre:     "Drama",
		Duration:  100,
		Rating:    4,
		PosterURL: "https://img.example/" + title + ".jpg",
		IsNew:     isNew,
		CreatedAt: created,
	}
	require.NoError(t, repos.Movie.Create(context.Background(), m))
	return m
}

func TestReleaseService_Run(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	now := time.Date(2024, 9, 17, 3, 0, 0, 0, time.UTC)

	old := createMovie(t, repos, "old", true, now.AddDate(0, 0, -45))
	fresh := createMovie(t, repos, "fresh", true, now.AddDate(0, 0, -3))
	classic := createMovie(t, repos, "classic", false, now.AddDate(-5, 0, 0))

	invalidated := 0
	svc := NewReleaseService(repos.Movie, 30, "0 3 * * *", func() { invalidated++ })
	svc.now = func() time.Time { return now }

	assert.Equal(t, int64(1), svc.Run(ctx))
	assert.Equal(t, 1, invalidated)

	got, err := repos.Movie.FindByID(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew)

	got, err = repos.Movie.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.IsNew)

	got, err = repos.Movie.FindByID(ctx, classic.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew)

	// 再次执行没有变化，不触发缓存失效
	assert.Equal(t, int64(0), svc.Run(ctx))
	assert.Equal(t, 1, invalidated)
}

func TestReleaseService_Start(t *testing.T) {
	repos := repository.NewMemoryRepositories()

	t.Run("invalid schedule", func(t *testing.T) {
		svc := NewReleaseService(repos.Movie, 30, "not a cron", nil)
		assert.Error(t, svc.Start())
	})

	t.Run("disabled", func(t *testing.T) {
		svc := NewReleaseService(repos.Movie, 0, "0 3 * * *", nil)
		require.NoError(t, svc.Start())
		assert.Nil(t, svc.cron)
		svc.Stop()
	})

	t.Run("start and stop", func(t *testing.T) {
		svc := NewReleaseService(repos.Movie, 30, "@every 1h", nil)
		require.NoError(t, svc.Start())
		assert.Len(t, svc.cron.Entries(), 1)
		svc.Stop()
	})
}
