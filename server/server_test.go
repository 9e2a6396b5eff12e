package server_test

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rarefeed/feeds"
	"rarefeed/render"
	"rarefeed/server"
)

func newTestApp(t *testing.T) (*server.ServerConfig, string) {
	t.Helper()
	dataDir := t.TempDir()

	config := &server.ServerConfig{
		Hostname:    "localhost",
		Broadcaster: server.NewBroadcaster(),
		Feeds: map[string]feeds.Feed{
			"all": feeds.NewFeed("all", "All rares", "Every dated cosmetic.", 0),
		},
		DataDir: dataDir,
		// Nothing listens on the loader URL, the page should degrade
		Loader: render.NewLoader("http://127.0.0.1:1/data/rares_top.json"),
	}

	return config, dataDir
}

func TestInvalidFeedRejected(t *testing.T) {
	config, _ := newTestApp(t)
	app := server.Server(config)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/feed?feed=nope", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListFeeds(t *testing.T) {
	config, _ := newTestApp(t)
	app := server.Server(config)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/feeds", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "All rares")
}

func TestSnapshotServedWithoutCaching(t *testing.T) {
	config, dataDir := newTestApp(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, "rares_top.json"),
		[]byte(`{"count":0,"items":[]}`), 0o644))

	app := server.Server(config)

	resp, err := app.Test(httptest.NewRequest("GET", "/data/rares_top.json", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestMetricsExposed(t *testing.T) {
	config, _ := newTestApp(t)
	app := server.Server(config)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# HELP")
}

func TestPageDegradesWhenFeedUnreachable(t *testing.T) {
	config, _ := newTestApp(t)
	app := server.Server(config)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), render.StatusLoadError)
}
