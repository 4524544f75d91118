package screen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/frame/internal/client"
)

type fakeToggler struct{ on map[int]bool }

func (f *fakeToggler) IsFavorite(_ context.Context, id int) (bool, error) {
	return f.on[id], nil
}

func (f *fakeToggler) ToggleFavorite(_ context.Context, id int) (bool, error) {
	f.on[id] = !f.on[id]
	return f.on[id], nil
}

type fakeStats struct {
	stats client.Stats
	err   error
}

func (f fakeStats) Stats(context.Context) (client.Stats, error) { return f.stats, f.err }

type fakeSession struct{ cleared bool }

func (f *fakeSession) Clear() error {
	f.cleared = true
	return nil
}

func TestDetails(t *testing.T) {
	m := client.Movie{ID: 9, Title: "Arrival", Genre: "Sci-Fi", Duration: 116, Rating: 4.6, IsNew: true}

	d := NewDetails(m, &fakeToggler{on: map[int]bool{}})
	assert.ErrorIs(t, d.Play(context.Background()), ErrPlaybackUnsupported)

	on, err := d.ToggleMyList(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
	in, err := d.InMyList(context.Background())
	require.NoError(t, err)
	assert.True(t, in)

	on, err = d.ToggleMyList(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	in, err = d.InMyList(context.Background())
	require.NoError(t, err)
	assert.False(t, in)

	guest := NewDetails(m, nil)
	_, err = guest.ToggleMyList(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
	in, err = guest.InMyList(context.Background())
	require.NoError(t, err)
	assert.False(t, in)

	var buf bytes.Buffer
	require.NoError(t, RenderDetails(&buf, m, false))
	assert.Contains(t, buf.String(), "Arrival")
	assert.Contains(t, buf.String(), "116 min")
	assert.Contains(t, buf.String(), "4.6/5")
	assert.Contains(t, buf.String(), "[+ My List]")

	buf.Reset()
	require.NoError(t, RenderDetails(&buf, m, true))
	assert.Contains(t, buf.String(), "[✓ My List]")
}

func TestProfile(t *testing.T) {
	guest := NewProfile(nil, nil)
	assert.False(t, guest.LoggedIn())
	stats, err := guest.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.Stats{}, stats)
	assert.NoError(t, guest.Logout())

	session := &fakeSession{}
	p := NewProfile(fakeStats{stats: client.Stats{Favorites: 2, Watched: 4}}, session)
	stats, err = p.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Favorites)
	require.NoError(t, p.Logout())
	assert.True(t, session.cleared)

	_, err = NewProfile(fakeStats{err: errors.New("down")}, nil).Stats(context.Background())
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderProfile(&buf, client.Stats{}, false))
	assert.Contains(t, buf.String(), "Guest")
	assert.Contains(t, buf.String(), "My List")
}

func TestRenderHome(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHome(&buf, State{Phase: Loading}))
	assert.Contains(t, buf.String(), "Loading")

	buf.Reset()
	require.NoError(t, RenderHome(&buf, State{Phase: Error, Message: MsgLoadFailed}))
	assert.Contains(t, buf.String(), MsgLoadFailed)

	buf.Reset()
	empty := Reduce(Reduce(State{}, FetchStarted{Seq: 1}), FetchSucceeded{Seq: 1})
	require.NoError(t, RenderHome(&buf, empty))
	assert.NotContains(t, buf.String(), "★")
	assert.Contains(t, buf.String(), "(none)")

	buf.Reset()
	loaded := Reduce(Reduce(State{}, FetchStarted{Seq: 1}), FetchSucceeded{Seq: 1, Movies: movies(3, 2)})
	require.NoError(t, RenderHome(&buf, loaded))
	out := buf.String()
	assert.Contains(t, out, "★ movie-1")
	assert.Contains(t, out, "Popular Now")
	assert.Contains(t, out, "New Releases")
	assert.Contains(t, out, "movie-3")
}
