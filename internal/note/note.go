package note

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Media is a single photo, video or audio attachment. The URI points at
// an externally hosted object; the client never embeds binary data.
type Media struct {
	UUID      string    `json:"uuid"`
	Type      MediaType `json:"type"`
	URI       string    `json:"uri"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Name      string    `json:"name,omitempty"`
}

func NewPhoto(uri string) Media {
	return Media{UUID: uuid.NewString(), Type: MediaImage, URI: uri}
}

func NewVideo(uri, thumbnail, duration string) Media {
	return Media{UUID: uuid.NewString(), Type: MediaVideo, URI: uri, Thumbnail: thumbnail, Duration: duration}
}

func NewAudio(uri, name, duration string) Media {
	return Media{UUID: uuid.NewString(), Type: MediaAudio, URI: uri, Name: name, Duration: duration}
}

// DisplayImage returns the URI to show in list and gallery views: the
// thumbnail for videos, the object itself otherwise.
func (m Media) DisplayImage() string {
	if m.Type == MediaVideo && m.Thumbnail != "" {
		return m.Thumbnail
	}
	return m.URI
}

// Note is a user-authored record. ID is assigned by the remote store on
// creation and is empty for drafts that have never been saved.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"` // HTML body
	Time      time.Time `json:"time"`
	Media     []Media   `json:"media"`
	Audio     []Media   `json:"audio"`
	Creator   string    `json:"creator"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
}

// Page tracks the client's position in a batch-fetched list.
// HasMore means the last page came back exactly full, which is a
// heuristic: when the remaining count equals the limit it reports true
// for one extra, empty page.
type Page struct {
	Number  int
	Limit   int
	HasMore bool
}

// Skip returns the offset the store expects for this page.
func (p Page) Skip() int {
	return (p.Number - 1) * p.Limit
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Marker is the Explore projection of a note: recomputed on every
// fetch, never persisted.
type Marker struct {
	Coordinate  Coordinate `json:"coordinate"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Time        time.Time  `json:"time"`
	Tags        []string   `json:"tags"`
	Creator     string     `json:"creator"`
	CreatedAt   string     `json:"createdAt"`
}
