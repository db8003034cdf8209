// Package editor composes note drafts and writes them to the store.
package editor

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
	"github.com/fieldnotes-app/fieldnotes/internal/validate"
)

// Saver is the slice of the API client the editor needs.
type Saver interface {
	WriteNewNote(ctx context.Context, n note.Note) (note.RawMessage, error)
	OverwriteNote(ctx context.Context, n note.Note) error
}

// Uploader pushes attachment bytes to the media proxy.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Draft is a note being composed. ID is empty until the first save.
type Draft struct {
	ID        string
	Title     string
	Body      string // HTML
	Tags      []string
	Media     []note.Media
	Audio     []note.Media
	Latitude  string
	Longitude string
	Published bool
	Time      time.Time
}

// PendingUpload is an attachment captured on-device that has not been
// pushed to the proxy yet.
type PendingUpload struct {
	Name        string
	ContentType string
	Type        note.MediaType
	Thumbnail   string
	Duration    string
	Data        io.Reader
}

type Editor struct {
	saver    Saver
	uploader Uploader
	log      *zap.Logger
}

func New(saver Saver, uploader Uploader, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{saver: saver, uploader: uploader, log: log}
}

// AttachMedia uploads the attachment and appends the resulting typed
// media item to the draft.
func (e *Editor) AttachMedia(ctx context.Context, d *Draft, up PendingUpload) error {
	location, err := e.uploader.Upload(ctx, up.Name, up.ContentType, up.Data)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", up.Name, err)
	}

	switch up.Type {
	case note.MediaVideo:
		d.Media = append(d.Media, note.NewVideo(location, up.Thumbnail, up.Duration))
	case note.MediaAudio:
		d.Audio = append(d.Audio, note.NewAudio(location, up.Name, up.Duration))
	default:
		d.Media = append(d.Media, note.NewPhoto(location))
	}
	return nil
}

// Save validates the draft and writes it: create for drafts without an
// ID, overwrite otherwise. Errors propagate; the screen shows the
// toast. Returns the saved note with any server-assigned fields.
func (e *Editor) Save(ctx context.Context, d Draft, creator string) (note.Note, error) {
	if d.Title == "" {
		return note.Note{}, fmt.Errorf("title is required")
	}
	if msg := validate.TextInput(d.Title); msg != "" {
		return note.Note{}, fmt.Errorf("invalid title: %s", msg)
	}
	if msg := validate.TextInput(d.Body); msg != "" {
		return note.Note{}, fmt.Errorf("invalid body: %s", msg)
	}

	when := d.Time
	if when.IsZero() {
		when = time.Now()
	}

	n := note.Note{
		ID:        d.ID,
		Title:     d.Title,
		Text:      d.Body,
		Time:      when,
		Media:     d.Media,
		Audio:     d.Audio,
		Creator:   creator,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Published: d.Published,
		Tags:      d.Tags,
	}

	if n.ID == "" {
		created, err := e.saver.WriteNewNote(ctx, n)
		if err != nil {
			return note.Note{}, err
		}
		n.ID = created.ID
		if t, err := time.Parse(time.RFC3339, created.Rerum.CreatedAt); err == nil {
			n.Time = t
		}
		e.log.Info("note created", zap.String("id", n.ID))
		return n, nil
	}

	if err := e.saver.OverwriteNote(ctx, n); err != nil {
		return note.Note{}, err
	}
	e.log.Info("note overwritten", zap.String("id", n.ID))
	return n, nil
}
