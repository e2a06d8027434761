package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namer derives object-storage keys and the upload/public URL pair for
// pending uploads. Everything here is string composition; the namer never
// talks to the object store and never sees the audio bytes.
type Namer struct {
	bucketEndpoint string
	cdnBase        string
	uniqueKeys     bool
}

// NewNamer creates a Namer for the given object-store endpoint and public
// CDN base. With uniqueKeys enabled, keys carry a random segment so two
// uploads of the same filename in the same millisecond stay distinct.
func NewNamer(bucketEndpoint, cdnBase string, uniqueKeys bool) *Namer {
	return &Namer{
		bucketEndpoint: strings.TrimRight(bucketEndpoint, "/"),
		cdnBase:        strings.TrimRight(cdnBase, "/"),
		uniqueKeys:     uniqueKeys,
	}
}

// Key composes the storage key for an upload submitted at the given time:
// audio/<podcastId>/<unixMillis>-<filename>. The key is human-traceable and
// time-ordered; within one millisecond identical filenames collide, which
// unique mode closes with a random segment after the timestamp.
func (n *Namer) Key(podcastID, filename string, submittedAt time.Time) string {
	millis := submittedAt.UnixMilli()
	if n.uniqueKeys {
		return fmt.Sprintf("audio/%s/%d-%s-%s", podcastID, millis, uuid.NewString(), filename)
	}
	return fmt.Sprintf("audio/%s/%d-%s", podcastID, millis, filename)
}

// UploadURL is the object-store address the uploading client writes to.
// Write authorization (presigning) is handled by whichever component
// performs the actual transfer.
func (n *Namer) UploadURL(key string) string {
	return n.bucketEndpoint + "/" + key
}

// PublicURL is the CDN address feed enclosures will point at once the
// episode is published.
func (n *Namer) PublicURL(key string) string {
	return n.cdnBase + "/" + key
}
