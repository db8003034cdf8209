// Package convert maps raw message documents from the remote store
// into typed notes for the Library and Explore screens.
package convert

import (
	"sort"
	"time"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

// ImageRef pairs a displayable image URI with the note it came from,
// for gallery views.
type ImageRef struct {
	Image string
	Note  note.Note
}

// ConvertMediaTypes turns every raw message into exactly one typed
// note. The mapping is total: unknown media types fall back to photos,
// unparsable timestamps fall back to the zero time. The result is
// sorted most recent first.
func ConvertMediaTypes(raw []note.RawMessage) []note.Note {
	_, offset := time.Now().Zone()
	return convertAll(raw, time.Duration(offset)*time.Second)
}

func convertAll(raw []note.RawMessage, utcOffset time.Duration) []note.Note {
	notes := make([]note.Note, 0, len(raw))
	for _, msg := range raw {
		notes = append(notes, convertOne(msg, utcOffset))
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time.After(notes[j].Time)
	})
	return notes
}

func convertOne(msg note.RawMessage, utcOffset time.Duration) note.Note {
	n := note.Note{
		ID:        msg.ID,
		Title:     msg.Title,
		Text:      msg.BodyText,
		Time:      displayTime(msg.Rerum, utcOffset),
		Creator:   msg.Creator,
		Latitude:  msg.Latitude,
		Longitude: msg.Longitude,
		Published: msg.Published,
		Tags:      msg.Tags,
	}
	for _, m := range msg.Media {
		n.Media = append(n.Media, typedMedia(m))
	}
	for _, a := range msg.Audio {
		n.Audio = append(n.Audio, typedMedia(a))
	}
	return n
}

// displayTime prefers the overwrite timestamp and subtracts the local
// UTC offset, so the screen shows the server's original wall-clock
// rather than a re-localized instant.
func displayTime(r note.Rerum, utcOffset time.Duration) time.Time {
	stamp := r.CreatedAt
	if r.IsOverwritten != "" {
		stamp = r.IsOverwritten
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}
	}
	return t.Add(-utcOffset)
}

func typedMedia(m note.RawMedia) note.Media {
	typed := note.Media{
		UUID:      m.UUID,
		URI:       m.URI,
		Thumbnail: m.Thumbnail,
		Duration:  m.Duration,
		Name:      m.Name,
	}
	switch m.Type {
	case string(note.MediaVideo):
		typed.Type = note.MediaVideo
	case string(note.MediaAudio):
		typed.Type = note.MediaAudio
	default:
		// Unknown discriminators become photos; the store has shipped
		// untyped entries before.
		typed.Type = note.MediaImage
	}
	return typed
}

// ExtractImages flattens every note's media into image/note pairs,
// using a video's thumbnail or a photo's URI.
func ExtractImages(fetched []note.Note) []ImageRef {
	var refs []ImageRef
	for _, n := range fetched {
		for _, m := range n.Media {
			refs = append(refs, ImageRef{Image: m.DisplayImage(), Note: n})
		}
	}
	return refs
}
