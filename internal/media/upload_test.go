package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotName, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotName = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		gotBody = string(data)

		w.Header().Set("Location", "http://cdn.example.com/objects/abc.jpg")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL + "/")
	location, err := u.Upload(context.Background(), "plot14.jpg", "image/jpeg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)

	assert.Equal(t, "http://cdn.example.com/objects/abc.jpg", location)
	assert.Equal(t, "plot14.jpg", gotName)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "jpeg bytes", gotBody)
}

func TestUploadMissingLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL + "/")
	_, err := u.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location")
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL + "/")
	_, err := u.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
