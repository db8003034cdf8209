// Package media uploads attachments through the S3 proxy.
package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

type Uploader struct {
	prefix     string
	httpClient *http.Client
}

func NewUploader(prefix string) *Uploader {
	return &Uploader{
		prefix: prefix,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute, // video uploads are slow on field connections
		},
	}
}

// Upload streams the object as multipart form data and returns the
// stored object's URL from the response Location header.
func (u *Uploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.prefix+"uploadFile", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("upload response missing Location header")
	}
	return location, nil
}
