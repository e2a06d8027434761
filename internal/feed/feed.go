package feed

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"audiostreamly-edge/internal/models"
)

const (
	itunesNS  = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	contentNS = "http://purl.org/rss/1.0/modules/content/"

	// Every enclosure is served as MP3 regardless of the declared upload
	// content type; the platform transcodes on ingest.
	enclosureMIMEType = "audio/mpeg"

	generatorName = "audiostreamly-edge"
)

// Render produces the RSS 2.0 document for a podcast and its published
// episodes. Episode order is preserved as given; the store is responsible
// for serving episodes most-recent first. Episodes without a publication
// timestamp are never rendered. A negative duration or file size is a
// broken upstream view and yields an error instead of a clamped value.
func Render(podcast models.Podcast, episodes []models.Episode) ([]byte, error) {
	doc := rssFeed{
		Version:   "2.0",
		ITunesNS:  itunesNS,
		ContentNS: contentNS,
		Channel: rssChannel{
			Title:       podcast.Title,
			Description: cdata{podcast.Description},
			Language:    podcast.Language,
			Image:       itunesImage{Href: podcast.CoverURL},
			Category:    itunesCategory{Text: podcast.Category},
			Explicit:    explicitValue(podcast.Explicit),
			Generator:   generatorName,
		},
	}

	var newest int64
	for _, ep := range episodes {
		if ep.PublishedAt == nil {
			continue
		}
		if ep.FileSizeBytes < 0 {
			return nil, fmt.Errorf("episode %q: negative file size %d", ep.Title, ep.FileSizeBytes)
		}

		duration, err := formatDuration(ep.DurationSeconds)
		if err != nil {
			return nil, fmt.Errorf("episode %q: %w", ep.Title, err)
		}

		if *ep.PublishedAt > newest {
			newest = *ep.PublishedAt
		}

		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       ep.Title,
			Description: cdata{ep.Description},
			Enclosure: rssEnclosure{
				URL:    ep.AudioURL,
				Type:   enclosureMIMEType,
				Length: ep.FileSizeBytes,
			},
			Duration: duration,
			PubDate:  httpDate(*ep.PublishedAt),
			// The audio URL is stable across regenerations, so clients do
			// not treat unchanged episodes as new.
			GUID: rssGUID{IsPermaLink: "false", Value: ep.AudioURL},
		})
	}

	if newest > 0 {
		doc.Channel.LastBuildDate = httpDate(newest)
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), output...), nil
}

// formatDuration renders whole seconds as H:MM:SS once at least an hour
// long, M:SS otherwise. Hours and leading minutes stay unpadded.
func formatDuration(seconds int64) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("negative duration %d", seconds)
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs), nil
	}
	return fmt.Sprintf("%d:%02d", minutes, secs), nil
}

func httpDate(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(http.TimeFormat)
}

func explicitValue(explicit bool) string {
	if explicit {
		return "yes"
	}
	return "no"
}

// cdata wraps free-form user text in a CDATA section. The encoder splits
// any embedded "]]>" across adjacent sections, so hostile descriptions
// cannot break out of the block.
type cdata struct {
	Text string `xml:",cdata"`
}

type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ITunesNS  string     `xml:"xmlns:itunes,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string         `xml:"title"`
	Description   cdata          `xml:"description"`
	Language      string         `xml:"language,omitempty"`
	Image         itunesImage    `xml:"itunes:image"`
	Category      itunesCategory `xml:"itunes:category"`
	Explicit      string         `xml:"itunes:explicit"`
	LastBuildDate string         `xml:"lastBuildDate,omitempty"`
	Generator     string         `xml:"generator,omitempty"`
	Items         []rssItem      `xml:"item"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description cdata        `xml:"description"`
	Enclosure   rssEnclosure `xml:"enclosure"`
	Duration    string       `xml:"itunes:duration"`
	PubDate     string       `xml:"pubDate"`
	GUID        rssGUID      `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}
