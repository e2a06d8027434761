package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = "127.0.0.1:8080"
	defaultBucketEndpoint  = "https://audiostreamly.r2.cloudflarestorage.com"
	defaultCDNBase         = "https://cdn.audiostreamly.com"
	defaultFeedCacheMaxAge = 300
)

// Config carries every recognized option. It is resolved once at startup and
// passed to components at construction; handlers never consult the
// environment per request.
type Config struct {
	// ListenAddr is the TCP address the HTTP server binds to.
	ListenAddr string
	// StoreEndpoint is the metadata store base URL. Required; resolving an
	// empty value is a startup error.
	StoreEndpoint string
	// BucketEndpoint is the object-store base uploads are written to.
	BucketEndpoint string
	// CDNBase is the public host uploaded audio is served from.
	CDNBase string
	// FeedCacheMaxAge is the max-age in seconds advertised on feed responses.
	FeedCacheMaxAge int
	// UniqueUploadKeys inserts a random segment into upload keys so
	// same-millisecond uploads of identical filenames stay distinct.
	UniqueUploadKeys bool
}

type fileConfig struct {
	ListenAddr       string `yaml:"listen_addr"`
	StoreEndpoint    string `yaml:"store_endpoint"`
	BucketEndpoint   string `yaml:"bucket_endpoint"`
	CDNBase          string `yaml:"cdn_base"`
	FeedCacheMaxAge  *int   `yaml:"feed_cache_max_age"`
	UniqueUploadKeys *bool  `yaml:"unique_upload_keys"`
}

// Load resolves configuration from built-in defaults, an optional YAML file
// named by EDGE_CONFIG_FILE, and EDGE_* environment variables, in that
// order (later wins).
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		BucketEndpoint:  defaultBucketEndpoint,
		CDNBase:         defaultCDNBase,
		FeedCacheMaxAge: defaultFeedCacheMaxAge,
	}

	if path := strings.TrimSpace(os.Getenv("EDGE_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.StoreEndpoint) == "" {
		return Config{}, errors.New("metadata store endpoint is required (set EDGE_STORE_ENDPOINT or store_endpoint)")
	}
	if cfg.FeedCacheMaxAge < 0 {
		return Config{}, fmt.Errorf("feed cache max-age must not be negative, got %d", cfg.FeedCacheMaxAge)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", resolved, err)
	}

	if value := strings.TrimSpace(file.ListenAddr); value != "" {
		cfg.ListenAddr = value
	}
	if value := strings.TrimSpace(file.StoreEndpoint); value != "" {
		cfg.StoreEndpoint = value
	}
	if value := strings.TrimSpace(file.BucketEndpoint); value != "" {
		cfg.BucketEndpoint = value
	}
	if value := strings.TrimSpace(file.CDNBase); value != "" {
		cfg.CDNBase = value
	}
	if file.FeedCacheMaxAge != nil {
		cfg.FeedCacheMaxAge = *file.FeedCacheMaxAge
	}
	if file.UniqueUploadKeys != nil {
		cfg.UniqueUploadKeys = *file.UniqueUploadKeys
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if value := strings.TrimSpace(os.Getenv("EDGE_LISTEN_ADDR")); value != "" {
		cfg.ListenAddr = value
	}
	if value := strings.TrimSpace(os.Getenv("EDGE_STORE_ENDPOINT")); value != "" {
		cfg.StoreEndpoint = value
	}
	if value := strings.TrimSpace(os.Getenv("EDGE_BUCKET_ENDPOINT")); value != "" {
		cfg.BucketEndpoint = value
	}
	if value := strings.TrimSpace(os.Getenv("EDGE_CDN_BASE")); value != "" {
		cfg.CDNBase = value
	}

	if value := strings.TrimSpace(os.Getenv("EDGE_FEED_CACHE_MAX_AGE")); value != "" {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid EDGE_FEED_CACHE_MAX_AGE %q: %w", value, err)
		}
		cfg.FeedCacheMaxAge = seconds
	}

	if value := strings.TrimSpace(os.Getenv("EDGE_UNIQUE_UPLOAD_KEYS")); value != "" {
		unique, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid EDGE_UNIQUE_UPLOAD_KEYS %q: %w", value, err)
		}
		cfg.UniqueUploadKeys = unique
	}

	return nil
}

func resolveConfigPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return filepath.Abs(path)
}
