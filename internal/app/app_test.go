package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kodict/internal/compress"
	"github.com/heartmarshall/kodict/internal/config"
	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/index"
	"github.com/heartmarshall/kodict/internal/query"
	"github.com/heartmarshall/kodict/internal/store"
)

func publishTestStore(t *testing.T) string {
	t.Helper()

	entries := []domain.Entry{
		{Key: "나무", Senses: []domain.Sense{{Word: "tree", Definition: "a tall plant"}}},
		{Key: "나비", Senses: []domain.Sense{{Word: "butterfly", Definition: "an insect"}}},
	}
	ix, err := index.Build(domain.Keys(entries))
	require.NoError(t, err)

	table := make([]domain.Entry, ix.Len())
	for _, e := range entries {
		id, _ := ix.Lookup(e.Key)
		table[id] = e
	}
	s, err := store.New(ix, table)
	require.NoError(t, err)

	root := t.TempDir()
	_, err = store.Publish(context.Background(), root, s, store.PublishOptions{Compression: compress.Zstd})
	require.NoError(t, err)
	return root
}

func testConfig(root string, rateLimit bool) *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Dir: root},
		Query: config.QueryConfig{DefaultPrefixLimit: 20, MaxPrefixLimit: 100},
		CORS:  config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,OPTIONS", MaxAge: 60},
		RateLimit: config.RateLimitConfig{
			Enabled:           rateLimit,
			RequestsPerSecond: 1,
			Burst:             1,
			IdleTTL:           time.Minute,
		},
	}
}

func newTestLoader(root string) *query.Loader {
	return query.NewLoader(func() (*store.Store, error) { return store.Load(root) })
}

func TestNewHandler_ServesStore(t *testing.T) {
	t.Parallel()

	root := publishTestStore(t)
	h, stop := newHandler(testConfig(root, false), newTestLoader(root), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer stop()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prefix/"+url.PathEscape("나"), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []query.Match `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "나무", resp.Results[0].Key)
	assert.Equal(t, "나비", resp.Results[1].Key)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"generation":"gen-`)
}

func TestNewHandler_RateLimited(t *testing.T) {
	t.Parallel()

	root := publishTestStore(t)
	h, stop := newHandler(testConfig(root, true), newTestLoader(root), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer stop()

	doGet := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/random", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, doGet())
	assert.Equal(t, http.StatusTooManyRequests, doGet())
}

func TestNewHandler_MissingStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	h, stop := newHandler(testConfig(root, false), newTestLoader(root), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer stop()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
