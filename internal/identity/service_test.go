package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/field-notes/databases/(default)/documents/users/u1":
			w.Write([]byte(`{"fields":{"name":{"stringValue":"Ada"},"email":{"stringValue":"ada@example.com"}}}`))
		case "/projects/field-notes/databases/(default)/documents/users/empty":
			w.Write([]byte(`{}`))
		case "/projects/field-notes/databases/(default)/documents/users/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewService("field-notes", "test-key", nil).WithBaseURL(srv.URL)
	ctx := context.Background()

	t.Run("existing document", func(t *testing.T) {
		got, err := svc.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.UID)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, "ada@example.com", got.Email)
	})

	t.Run("missing document is nil, nil", func(t *testing.T) {
		got, err := svc.GetUser(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("document without fields is nil, nil", func(t *testing.T) {
		got, err := svc.GetUser(ctx, "empty")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("server failure is an error", func(t *testing.T) {
		_, err := svc.GetUser(ctx, "broken")
		require.Error(t, err)
	})
}

func TestSignInState(t *testing.T) {
	svc := NewService("field-notes", "test-key", nil)

	assert.Nil(t, svc.Current())
	assert.Empty(t, svc.UserID(), "anonymous browsing has no uid")

	svc.SignIn(api.UserProfile{UID: "u1", Name: "Ada"})
	require.NotNil(t, svc.Current())
	assert.Equal(t, "u1", svc.UserID())

	svc.SignOut()
	assert.Nil(t, svc.Current())
	assert.Empty(t, svc.UserID())
}
