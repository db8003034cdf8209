package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

type fakeSaver struct {
	created     []note.Note
	overwritten []note.Note
	err         error
}

func (f *fakeSaver) WriteNewNote(ctx context.Context, n note.Note) (note.RawMessage, error) {
	if f.err != nil {
		return note.RawMessage{}, f.err
	}
	f.created = append(f.created, n)
	return note.RawMessage{
		ID:    "https://store.local/v1/id/new",
		Title: n.Title,
		Rerum: note.Rerum{CreatedAt: "2024-05-01T12:00:00Z"},
	}, nil
}

func (f *fakeSaver) OverwriteNote(ctx context.Context, n note.Note) error {
	if f.err != nil {
		return f.err
	}
	f.overwritten = append(f.overwritten, n)
	return nil
}

type fakeUploader struct {
	location string
	err      error
	uploads  []string
}

func (f *fakeUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, name)
	return f.location, nil
}

func TestSaveCreatesWithoutID(t *testing.T) {
	saver := &fakeSaver{}
	e := New(saver, &fakeUploader{}, nil)

	saved, err := e.Save(context.Background(), Draft{
		Title: "Prairie burn recovery",
		Body:  "<p>Resprouting.</p>",
		Tags:  []string{"prairie"},
	}, "u1")
	require.NoError(t, err)

	require.Len(t, saver.created, 1)
	assert.Empty(t, saver.overwritten)
	assert.Equal(t, "u1", saver.created[0].Creator)

	assert.Equal(t, "https://store.local/v1/id/new", saved.ID, "server id adopted")
	assert.Equal(t, 2024, saved.Time.Year(), "server creation time adopted")
}

func TestSaveOverwritesWithID(t *testing.T) {
	saver := &fakeSaver{}
	e := New(saver, &fakeUploader{}, nil)

	saved, err := e.Save(context.Background(), Draft{
		ID:    "https://store.local/v1/id/existing",
		Title: "Updated title",
	}, "u1")
	require.NoError(t, err)

	assert.Empty(t, saver.created)
	require.Len(t, saver.overwritten, 1)
	assert.Equal(t, "https://store.local/v1/id/existing", saved.ID)
}

func TestSaveValidation(t *testing.T) {
	e := New(&fakeSaver{}, &fakeUploader{}, nil)
	ctx := context.Background()

	_, err := e.Save(ctx, Draft{Title: ""}, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")

	_, err = e.Save(ctx, Draft{Title: "ok", Body: "<script>alert(1)</script>"}, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid body")
}

func TestSavePropagatesStoreErrors(t *testing.T) {
	saver := &fakeSaver{err: errors.New("store down")}
	e := New(saver, &fakeUploader{}, nil)

	_, err := e.Save(context.Background(), Draft{Title: "ok"}, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestAttachMedia(t *testing.T) {
	up := &fakeUploader{location: "http://cdn/objects/x.jpg"}
	e := New(&fakeSaver{}, up, nil)
	ctx := context.Background()

	var d Draft
	err := e.AttachMedia(ctx, &d, PendingUpload{
		Name: "plot.jpg", ContentType: "image/jpeg",
		Type: note.MediaImage, Data: strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.Len(t, d.Media, 1)
	assert.Equal(t, note.MediaImage, d.Media[0].Type)
	assert.Equal(t, "http://cdn/objects/x.jpg", d.Media[0].URI)

	err = e.AttachMedia(ctx, &d, PendingUpload{
		Name: "clip.mp4", Type: note.MediaVideo,
		Thumbnail: "http://cdn/thumb.jpg", Duration: "0:12",
		Data: strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.Len(t, d.Media, 2)
	assert.Equal(t, note.MediaVideo, d.Media[1].Type)
	assert.Equal(t, "http://cdn/thumb.jpg", d.Media[1].Thumbnail)

	err = e.AttachMedia(ctx, &d, PendingUpload{
		Name: "memo.m4a", Type: note.MediaAudio,
		Duration: "1:05", Data: strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.Len(t, d.Audio, 1, "audio lands in its own list")
	assert.Empty(t, d.Audio[0].Thumbnail)

	up.err = errors.New("proxy down")
	err = e.AttachMedia(ctx, &d, PendingUpload{Name: "fail.jpg", Data: strings.NewReader("x")})
	require.Error(t, err)
	assert.Len(t, d.Media, 2, "failed upload attaches nothing")
}
