package audioprobe

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Result mirrors the episode form fields the upload gateway cannot fill on
// its own: the gateway only names the object, it never reads the bytes.
// Field names match the metadata store's episode schema so the output can be
// pasted straight into the episode form.
type Result struct {
	Filename        string  `json:"filename"`
	Title           string  `json:"title"`
	Artist          *string `json:"artist,omitempty"`
	Album           *string `json:"album,omitempty"`
	DurationSeconds *int64  `json:"durationSeconds,omitempty"`
	FileSizeBytes   int64   `json:"fileSizeBytes"`
}

// Probe inspects a local audio file and reports the metadata an episode
// record needs. Duration is only computed for MP3 files; other containers
// report tags and size only.
func Probe(path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}

	title, artist, album := readTags(path)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var durationPtr *int64
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		dur, err := computeMP3Duration(path)
		if err == nil && dur > 0 {
			seconds := int64(math.Round(dur))
			durationPtr = &seconds
		}
	}

	return Result{
		Filename:        filepath.Base(path),
		Title:           title,
		Artist:          artist,
		Album:           album,
		DurationSeconds: durationPtr,
		FileSizeBytes:   info.Size(),
	}, nil
}

func readTags(path string) (string, *string, *string) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return "", nil, nil
	}

	title := strings.TrimSpace(meta.Title())
	artist := optionalString(meta.Artist())
	album := optionalString(meta.Album())
	return title, artist, album
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func computeMP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
