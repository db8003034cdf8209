package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
	"github.com/fieldnotes-app/fieldnotes/internal/devserver"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

type fakeProfiles struct {
	users map[string]*api.UserProfile
	err   error
}

func (f *fakeProfiles) GetUser(ctx context.Context, uid string) (*api.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[uid], nil
}

func newTestClient(t *testing.T, profiles api.ProfileStore) (*api.Client, *devserver.Store) {
	t.Helper()
	store := devserver.NewStore()
	srv := httptest.NewServer(devserver.New(store, nil))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL+"/", profiles, nil), store
}

func TestNoteRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	created, err := client.WriteNewNote(ctx, note.Note{
		Title:     "Creek turbidity",
		Text:      "<p>Running brown at the footbridge.</p>",
		Creator:   "u1",
		Latitude:  "38.6362",
		Longitude: "-90.2336",
		Tags:      []string{"hydrology"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "store assigns the document id")
	assert.NotEmpty(t, created.Rerum.CreatedAt)

	page, err := client.FetchMessagesBatch(ctx, false, false, "u1", 20, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	got := page[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Creek turbidity", got.Title)
	assert.Equal(t, "<p>Running brown at the footbridge.</p>", got.BodyText)
	assert.Equal(t, []string{"hydrology"}, got.Tags)
	assert.Equal(t, "38.6362", got.Latitude)

	err = client.OverwriteNote(ctx, note.Note{
		ID:      created.ID,
		Title:   "Creek turbidity, day two",
		Creator: "u1",
	})
	require.NoError(t, err)

	page, err = client.FetchMessagesBatch(ctx, false, false, "u1", 20, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Creek turbidity, day two", page[0].Title)
	assert.NotEmpty(t, page[0].Rerum.IsOverwritten, "overwrite stamps the document")
	assert.Equal(t, created.Rerum.CreatedAt, page[0].Rerum.CreatedAt, "creation time survives")

	require.NoError(t, client.DeleteNote(ctx, created.ID))
	page, err = client.FetchMessagesBatch(ctx, false, false, "u1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	err = client.DeleteNote(ctx, created.ID)
	require.Error(t, err, "deleting twice surfaces the store's error")
	assert.Contains(t, err.Error(), "not found")
}

func TestFetchMessagesWalksAllPages(t *testing.T) {
	client, store := newTestClient(t, nil)

	// More than one internal page of 150.
	for i := 0; i < 160; i++ {
		store.CreateMessage(note.RawMessage{
			Title:   fmt.Sprintf("Note %03d", i),
			Creator: "u1",
		})
	}

	all, err := client.FetchMessages(context.Background(), false, false, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 160)
}

func TestFetchMessagesBatchFilters(t *testing.T) {
	client, store := newTestClient(t, nil)
	store.CreateMessage(note.RawMessage{Title: "mine private", Creator: "u1"})
	store.CreateMessage(note.RawMessage{Title: "mine published", Creator: "u1", Published: true})
	store.CreateMessage(note.RawMessage{Title: "theirs published", Creator: "u2", Published: true})
	ctx := context.Background()

	mine, err := client.FetchMessagesBatch(ctx, false, false, "u1", 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine private", mine[0].Title)

	everyone, err := client.FetchMapMessagesBatch(ctx, true, true, "u1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, everyone, 2, "global drops the creator filter")
}

func TestSearchMessages(t *testing.T) {
	client, store := newTestClient(t, nil)
	store.CreateMessage(note.RawMessage{Title: "Prairie burn recovery"})
	store.CreateMessage(note.RawMessage{Title: "Creek survey", Tags: []string{"Fire-Ecology"}})
	store.CreateMessage(note.RawMessage{Title: "Soil cores"})
	ctx := context.Background()

	byTitle, err := client.SearchMessages(ctx, "BURN")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Prairie burn recovery", byTitle[0].Title)

	byTag, err := client.SearchMessages(ctx, "fire")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Creek survey", byTag[0].Title)

	none, err := client.SearchMessages(ctx, "glacier")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFetchCreatorName(t *testing.T) {
	t.Run("agent document wins", func(t *testing.T) {
		client, store := newTestClient(t, nil)
		store.AddAgent("u1", "Ada Lovelace")
		assert.Equal(t, "Ada Lovelace", client.FetchCreatorName(context.Background(), "u1"))
	})

	t.Run("agent with blank name", func(t *testing.T) {
		client, store := newTestClient(t, nil)
		store.AddAgent("u1", "")
		assert.Equal(t, api.UnknownCreator, client.FetchCreatorName(context.Background(), "u1"))
	})

	t.Run("falls through to profile store", func(t *testing.T) {
		profiles := &fakeProfiles{users: map[string]*api.UserProfile{
			"u2": {UID: "u2", Name: "Grace Hopper"},
		}}
		client, _ := newTestClient(t, profiles)
		assert.Equal(t, "Grace Hopper", client.FetchCreatorName(context.Background(), "u2"))
	})

	t.Run("nobody knows the user", func(t *testing.T) {
		client, _ := newTestClient(t, &fakeProfiles{})
		assert.Equal(t, api.CreatorNotAvailable, client.FetchCreatorName(context.Background(), "ghost"))
	})

	t.Run("profile store failure", func(t *testing.T) {
		client, _ := newTestClient(t, &fakeProfiles{err: errors.New("identity service down")})
		assert.Equal(t, api.ErrRetrievingCreator, client.FetchCreatorName(context.Background(), "u3"))
	})

	t.Run("store unreachable", func(t *testing.T) {
		client := api.NewClient("http://127.0.0.1:1/", nil, nil)
		assert.Equal(t, api.ErrRetrievingCreator, client.FetchCreatorName(context.Background(), "u1"))
	})
}

func TestFetchUserData(t *testing.T) {
	t.Run("profile store first", func(t *testing.T) {
		profiles := &fakeProfiles{users: map[string]*api.UserProfile{
			"u1": {UID: "u1", Name: "Ada", Email: "ada@example.com"},
		}}
		client, store := newTestClient(t, profiles)
		store.AddAgent("u1", "Shadowed Agent Name")

		got := client.FetchUserData(context.Background(), "u1")
		require.NotNil(t, got)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, "ada@example.com", got.Email)
	})

	t.Run("agent fallback", func(t *testing.T) {
		client, store := newTestClient(t, &fakeProfiles{})
		store.AddAgent("u2", "Grace")

		got := client.FetchUserData(context.Background(), "u2")
		require.NotNil(t, got)
		assert.Equal(t, "u2", got.UID)
		assert.Equal(t, "Grace", got.Name)
		assert.Empty(t, got.Email, "agent documents carry no email")
	})

	t.Run("unknown user is nil, not an error", func(t *testing.T) {
		client, _ := newTestClient(t, &fakeProfiles{})
		assert.Nil(t, client.FetchUserData(context.Background(), "ghost"))
	})
}
