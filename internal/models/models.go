package models

// Podcast is the channel-level view returned by the metadata store. The edge
// only reads it; ownership and mutation live upstream.
type Podcast struct {
	ID          string `json:"_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	Language    string `json:"language"`
	Category    string `json:"category"`
	Explicit    bool   `json:"explicit"`
}

// Episode is the per-episode view. PublishedAt is epoch milliseconds and is
// only present once the episode is published; drafts carry nil.
type Episode struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	AudioURL        string `json:"audioUrl"`
	DurationSeconds int64  `json:"durationSeconds"`
	FileSizeBytes   int64  `json:"fileSizeBytes"`
	PublishedAt     *int64 `json:"publishedAt,omitempty"`
}

// UploadRequest is the JSON body of an upload intake call. All fields are
// untrusted client input and are discarded once a key/URL triple is minted.
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	PodcastID   string `json:"podcastId"`
}
