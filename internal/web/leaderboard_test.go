package web_test

import (
	"context"
	"errors"
	"fluggy/internal/back"
	"fluggy/internal/util"
	"fluggy/internal/web"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	users    []back.User
	err      error
	guildIDs []string
}

func (f *fakeSource) GetLeaderboardEntries(_ context.Context, guildID string) ([]back.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guildIDs = append(f.guildIDs, guildID)

	if f.err != nil {
		return nil, f.err
	}

	return f.users, nil
}

func (f *fakeSource) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.guildIDs...)
}

func newTestServer(t *testing.T, source web.LeaderboardSource) *web.Server {
	t.Helper()

	s, err := web.NewServer(source, web.ServerOptions{}, nil)
	require.NoError(t, err)

	return s
}

func get(s *web.Server, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func TestLeaderboardMissingGuildID(t *testing.T) {
	for _, target := range []string{"/leaderboard", "/leaderboard?guildId=", "/leaderboard?guild=g1"} {
		source := &fakeSource{}
		s := newTestServer(t, source)

		rec := get(s, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Error: No guildId provided in URL query params.", target)
		assert.Empty(t, source.calls(), target)
	}
}

func TestLeaderboardMissingGuildIDIsNotTranslated(t *testing.T) {
	source := &fakeSource{}
	s := newTestServer(t, source)

	rec := get(s, "/leaderboard", map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), web.MissingGuildIDMessage)
	assert.Empty(t, source.calls())
}

func TestLeaderboard(t *testing.T) {
	updated := util.TimeAsTimestamp(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	source := &fakeSource{users: []back.User{
		{
			DiscordID:      "2",
			SteamID:        "76561198000000002",
			PfpURL:         "https://cdn.example/2.png",
			MutualServers:  []string{"g1", "g2"},
			Elo:            900,
			GlobalRankLB:   40,
			GlobalRankUB:   42,
			UpdatedAt:      updated,
			PlayerCardInfo: util.StringMapAsJSON{"primary_color": "red", "secondary_color": "blue"},
		},
		{
			DiscordID:     "1",
			MutualServers: []string{"g1"},
			Elo:           1200,
			GlobalRankLB:  10,
			GlobalRankUB:  10,
		},
	}}
	s := newTestServer(t, source)

	rec := get(s, "/leaderboard?guildId=g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"g1"}, source.calls())

	body := rec.Body.String()
	assert.Contains(t, body, "Value of guildId: g1")
	assert.NotContains(t, body, web.MissingGuildIDMessage)

	first := strings.Index(body, `id="player-2"`)
	second := strings.Index(body, `id="player-1"`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "rows must keep the source order")

	assert.Contains(t, body, `<td class="rank">1</td>`)
	assert.Contains(t, body, `<td class="rank">2</td>`)
	assert.Contains(t, body, `<td class="elo">900</td>`)
	assert.Contains(t, body, `<td class="elo">1200</td>`)
	assert.Contains(t, body, "#40–42")
	assert.Contains(t, body, "2025-03-14")
	assert.Contains(t, body, `class="card-red card-secondary-blue"`)
	assert.Contains(t, body, "https://steamcommunity.com/profiles/76561198000000002")
	assert.Contains(t, body, `src="https://cdn.example/2.png"`)
}

func TestLeaderboardPassesGuildIDUnmodified(t *testing.T) {
	source := &fakeSource{}
	s := newTestServer(t, source)

	raw := " <weird> guild "
	rec := get(s, "/leaderboard?guildId="+url.QueryEscape(raw), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{raw}, source.calls())
	assert.NotContains(t, rec.Body.String(), "<weird>")
	assert.Contains(t, rec.Body.String(), "&lt;weird&gt;")
}

func TestLeaderboardEmpty(t *testing.T) {
	source := &fakeSource{users: []back.User{}}
	s := newTestServer(t, source)

	rec := get(s, "/leaderboard?guildId=nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No players on this leaderboard yet.")
	assert.NotContains(t, rec.Body.String(), "<table")
}

func TestLeaderboardUnranked(t *testing.T) {
	source := &fakeSource{users: []back.User{{DiscordID: "9", Elo: back.UnrankedElo}}}
	s := newTestServer(t, source)

	rec := get(s, "/leaderboard?guildId=g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<td class="elo">unranked</td>`)

	rec = get(s, "/leaderboard?guildId=g1", map[string]string{"Accept-Language": "fr"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<td class="elo">non classé</td>`)
	assert.Contains(t, rec.Body.String(), "Classement")
}

func TestLeaderboardSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	s := newTestServer(t, source)

	rec := get(s, "/leaderboard?guildId=g1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), http.StatusText(http.StatusInternalServerError))
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Equal(t, []string{"g1"}, source.calls())
}

func TestIndexAndStatic(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	rec := get(s, "/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = get(s, "/_/style.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "public")
	assert.Contains(t, rec.Body.String(), "table.leaderboard")

	rec = get(s, "/_/missing.css", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(s, "/leaderboard?guildId=g1", nil)
	assert.Contains(t, rec.Body.String(), `integrity="sha512-`)
}

func TestServeStopsWhenDone(t *testing.T) {
	s, err := web.NewServer(&fakeSource{}, web.ServerOptions{Address: "127.0.0.1:0"}, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	served := make(chan error, 1)
	go func() {
		served <- s.Serve(done)
	}()

	close(done)
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s, err := web.NewServer(&fakeSource{}, web.ServerOptions{Address: l.Addr().String()}, nil)
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() {
		served <- s.Serve(make(chan struct{}))
	}()

	select {
	case err := <-served:
		assert.Error(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("listen error was not returned")
	}
}
