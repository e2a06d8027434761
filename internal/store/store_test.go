package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeStore serves the store's query protocol for a single podcast with
// two published episodes.
func newFakeStore(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/query", r.URL.Path)

		var query struct {
			Path   string            `json:"path"`
			Args   map[string]string `json:"args"`
			Format string            `json:"format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		require.Equal(t, "json", query.Format)

		w.Header().Set("Content-Type", "application/json")

		switch query.Path {
		case "podcasts:getBySlug":
			if query.Args["slug"] != "test-cast" {
				writeSuccess(w, json.RawMessage("null"))
				return
			}
			writeSuccess(w, json.RawMessage(`{
				"_id": "p1",
				"slug": "test-cast",
				"title": "Test Cast",
				"description": "A test podcast",
				"coverUrl": "https://cdn.example/cover.jpg",
				"language": "en",
				"category": "Technology",
				"explicit": true
			}`))
		case "episodes:getPublished":
			require.Equal(t, "p1", query.Args["podcastId"])
			writeSuccess(w, json.RawMessage(`[
				{
					"title": "Episode 2",
					"description": "Second",
					"audioUrl": "https://cdn.example/2.mp3",
					"durationSeconds": 120,
					"fileSizeBytes": 2000,
					"publishedAt": 1700000100000
				},
				{
					"title": "Episode 1",
					"description": "First",
					"audioUrl": "https://cdn.example/1.mp3",
					"durationSeconds": 60,
					"fileSizeBytes": 1000,
					"publishedAt": 1700000000000
				}
			]`))
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "error",
				"errorMessage": "unknown function " + query.Path,
			})
		}
	}))
}

func writeSuccess(w http.ResponseWriter, value json.RawMessage) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"value":  value,
	})
}

func TestPodcastBySlug(t *testing.T) {
	srv := newFakeStore(t)
	defer srv.Close()

	client := New(srv.URL)
	podcast, err := client.PodcastBySlug(context.Background(), "test-cast")
	require.NoError(t, err)

	assert.Equal(t, "p1", podcast.ID)
	assert.Equal(t, "Test Cast", podcast.Title)
	assert.Equal(t, "https://cdn.example/cover.jpg", podcast.CoverURL)
	assert.True(t, podcast.Explicit)
}

func TestPodcastBySlugNotFound(t *testing.T) {
	srv := newFakeStore(t)
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.PodcastBySlug(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishedEpisodes(t *testing.T) {
	srv := newFakeStore(t)
	defer srv.Close()

	client := New(srv.URL)
	episodes, err := client.PublishedEpisodes(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	// The fake serves most-recent first; the client passes the order through.
	assert.Equal(t, "Episode 2", episodes[0].Title)
	assert.Equal(t, int64(120), episodes[0].DurationSeconds)
	require.NotNil(t, episodes[0].PublishedAt)
	assert.Equal(t, int64(1700000100000), *episodes[0].PublishedAt)
	assert.Equal(t, "Episode 1", episodes[1].Title)
}

func TestQueryErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":       "error",
			"errorMessage": "slug index missing",
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.PodcastBySlug(context.Background(), "test-cast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug index missing")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestQueryUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.PublishedEpisodes(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestQueryUnreachableStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL)
	_, err := client.PodcastBySlug(context.Background(), "test-cast")
	assert.Error(t, err)
}

func TestQueryHonorsContextCancellation(t *testing.T) {
	srv := newFakeStore(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL)
	_, err := client.PodcastBySlug(ctx, "test-cast")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	srv := newFakeStore(t)
	defer srv.Close()

	client := New(srv.URL + "/")
	_, err := client.PodcastBySlug(context.Background(), "test-cast")
	assert.NoError(t, err)
}
