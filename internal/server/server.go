package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"audiostreamly-edge/internal/feed"
	"audiostreamly-edge/internal/models"
	"audiostreamly-edge/internal/store"
)

// MetadataStore abstracts the podcast/episode source for the feed handler.
type MetadataStore interface {
	PodcastBySlug(ctx context.Context, slug string) (models.Podcast, error)
	PublishedEpisodes(ctx context.Context, podcastID string) ([]models.Episode, error)
}

// UploadNamer derives the storage key and URL pair for a pending upload.
type UploadNamer interface {
	Key(podcastID, filename string, submittedAt time.Time) string
	UploadURL(key string) string
	PublicURL(key string) string
}

// Options tune response behavior. Zero values get sane defaults.
type Options struct {
	// FeedCacheMaxAge is the max-age in seconds advertised to intermediate
	// caches on feed responses.
	FeedCacheMaxAge int
}

const defaultFeedCacheMaxAge = 300

type serverHandler struct {
	store  MetadataStore
	namer  UploadNamer
	opts   Options
	logger *log.Logger
	now    func() time.Time
}

// New creates the HTTP handler exposing the feed synthesizer and the upload
// intake gateway. Handlers hold no mutable state; every request is
// self-contained.
func New(metadataStore MetadataStore, namer UploadNamer, opts Options, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	if opts.FeedCacheMaxAge <= 0 {
		opts.FeedCacheMaxAge = defaultFeedCacheMaxAge
	}

	h := &serverHandler{
		store:  metadataStore,
		namer:  namer,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/feed", h.handleFeed)
	mux.HandleFunc("/feed/", h.handleFeed)
	mux.HandleFunc("/upload", h.handleUpload)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/feed"), "/")
	if slug == "" {
		http.Error(w, "Podcast slug required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	podcast, err := h.store.PodcastBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Printf("resolve podcast %q: %v", slug, err)
		}
		http.Error(w, "Feed not found", http.StatusNotFound)
		return
	}

	// A podcast with zero published episodes still renders a valid empty
	// channel; only resolution failures collapse to 404.
	episodes, err := h.store.PublishedEpisodes(ctx, podcast.ID)
	if err != nil {
		h.logger.Printf("list episodes for %q: %v", slug, err)
		http.Error(w, "Feed not found", http.StatusNotFound)
		return
	}

	data, err := feed.Render(podcast, episodes)
	if err != nil {
		h.logger.Printf("render feed for %q: %v", slug, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.opts.FeedCacheMaxAge))
	if _, err := w.Write(data); err != nil {
		h.logger.Printf("write feed for %q: %v", slug, err)
	}
}

func (h *serverHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		setCORSHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		h.handleUploadPost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type uploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
}

func (h *serverHandler) handleUploadPost(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Printf("decode upload request: %v", err)
		h.writeUploadError(w)
		return
	}
	if req.Filename == "" || req.ContentType == "" || req.PodcastID == "" {
		h.logger.Printf("upload request missing required fields")
		h.writeUploadError(w)
		return
	}

	key := h.namer.Key(req.PodcastID, req.Filename, h.now())
	resp := uploadResponse{
		Key:       key,
		UploadURL: h.namer.UploadURL(key),
		PublicURL: h.namer.PublicURL(key),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Printf("write upload response: %v", err)
	}
}

// writeUploadError is the single failure shape of the gateway. Parser and
// validation internals never reach the client.
func (h *serverHandler) writeUploadError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Upload failed"})
}

func setCORSHeaders(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		logger.Printf("%s %s -> %d (%dB) in %s", r.Method, r.URL.Path, sw.status, sw.size, duration)
	})
}
