package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

// fakeStore serves a fixed slice of messages with real limit/skip
// pagination, counting calls so tests can assert fetch behavior.
type fakeStore struct {
	messages []note.RawMessage
	calls    int
	err      error
}

func (f *fakeStore) FetchMessagesBatch(ctx context.Context, global, published bool, userID string, limit, skip int) ([]note.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if skip >= len(f.messages) {
		return []note.RawMessage{}, nil
	}
	end := skip + limit
	if end > len(f.messages) {
		end = len(f.messages)
	}
	return f.messages[skip:end], nil
}

func sampleMessages(n int) []note.RawMessage {
	out := make([]note.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, note.RawMessage{
			ID:    fmt.Sprintf("id-%02d", i),
			Title: fmt.Sprintf("Note %02d", i),
			Rerum: note.Rerum{CreatedAt: fmt.Sprintf("2024-03-%02dT10:00:00Z", i%27+1)},
		})
	}
	return out
}

func runPage(t *testing.T, c *Controller, req PageRequest) PageResult {
	t.Helper()
	res, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestTwoPagePagination(t *testing.T) {
	store := &fakeStore{messages: sampleMessages(35)}
	c := NewController(store, "u1", nil)

	req := c.StartInitial()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, DefaultLimit, req.Limit)
	assert.True(t, c.Rendering())

	res := runPage(t, c, req)
	require.True(t, c.Apply(res))
	assert.Len(t, c.Loaded(), 20)
	assert.True(t, c.HasMore(), "full first page means more expected")
	assert.False(t, c.Rendering())

	more, ok := c.StartLoadMore()
	require.True(t, ok)
	assert.Equal(t, 2, more.Page)

	res = runPage(t, c, more)
	require.True(t, c.Apply(res))
	assert.Len(t, c.Loaded(), 35)
	assert.False(t, c.HasMore(), "short page ends pagination")
	assert.Equal(t, FooterNone, c.FooterState())

	_, ok = c.StartLoadMore()
	assert.False(t, ok, "no further pages offered")
}

func TestHasMoreOnlyForFullPages(t *testing.T) {
	tests := []struct {
		total   int
		hasMore bool
	}{
		{0, false},
		{7, false},
		{19, false},
		{20, true}, // exactly one full page still claims more
		{21, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d notes", tt.total), func(t *testing.T) {
			store := &fakeStore{messages: sampleMessages(tt.total)}
			c := NewController(store, "u1", nil)
			res := runPage(t, c, c.StartInitial())
			require.True(t, c.Apply(res))
			assert.Equal(t, tt.hasMore, c.HasMore())
		})
	}
}

func TestArchivedNotesDroppedButCounted(t *testing.T) {
	msgs := sampleMessages(20)
	msgs[3].IsArchived = true
	msgs[11].IsArchived = true
	store := &fakeStore{messages: msgs}
	c := NewController(store, "u1", nil)

	res := runPage(t, c, c.StartInitial())
	assert.Equal(t, 20, res.FetchedCount)
	assert.Len(t, res.Notes, 18)

	require.True(t, c.Apply(res))
	assert.True(t, c.HasMore(), "raw count drives the heuristic, not survivors")
}

func TestStaleGenerationDropped(t *testing.T) {
	store := &fakeStore{messages: sampleMessages(35)}
	c := NewController(store, "u1", nil)

	first := c.StartInitial()
	res := runPage(t, c, first)
	require.True(t, c.Apply(res))

	// A load-more departs, then the filter flips before it lands.
	stale, ok := c.StartLoadMore()
	require.True(t, ok)
	staleRes := runPage(t, c, stale)

	fresh := c.SetFilter(FilterPublished)
	assert.False(t, c.Apply(staleRes), "stale page must not apply")
	assert.True(t, c.Rendering(), "the new initial load is still in flight")
	assert.False(t, c.LoadingMore())

	freshRes := runPage(t, c, fresh)
	assert.True(t, c.Apply(freshRes))
	assert.Equal(t, 1, c.Page())
}

func TestFailClearsLoadingFlags(t *testing.T) {
	store := &fakeStore{messages: sampleMessages(20)}
	c := NewController(store, "u1", nil)

	res := runPage(t, c, c.StartInitial())
	require.True(t, c.Apply(res))

	req, ok := c.StartLoadMore()
	require.True(t, ok)
	assert.Equal(t, FooterLoading, c.FooterState())

	store.err = errors.New("store down")
	_, err := c.Fetch(context.Background(), req)
	require.Error(t, err)

	assert.True(t, c.Fail(req, err))
	assert.False(t, c.LoadingMore())
	assert.Len(t, c.Loaded(), 20, "loaded notes survive a failed page")

	staleReq := req
	c.StartInitial()
	assert.False(t, c.Fail(staleReq, err), "stale failure is ignored")
}

func TestSearchIsInMemory(t *testing.T) {
	store := &fakeStore{messages: []note.RawMessage{
		{ID: "a", Title: "Prairie burn", Rerum: note.Rerum{CreatedAt: "2024-03-01T10:00:00Z"}},
		{ID: "b", Title: "Creek survey", Rerum: note.Rerum{CreatedAt: "2024-03-02T10:00:00Z"}},
		{ID: "c", Title: "Burn plot recheck", Rerum: note.Rerum{CreatedAt: "2024-03-03T10:00:00Z"}},
	}}
	c := NewController(store, "u1", nil)
	res := runPage(t, c, c.StartInitial())
	require.True(t, c.Apply(res))
	fetchesBefore := store.calls

	c.SetSearch("burn")
	visible := c.VisibleNotes()
	require.Len(t, visible, 2)
	assert.Equal(t, "Burn plot recheck", visible[0].Title)
	assert.Equal(t, "Prairie burn", visible[1].Title)
	assert.Equal(t, fetchesBefore, store.calls, "search never refetches")

	c.SetSearch("")
	assert.Len(t, c.VisibleNotes(), 3, "empty query shows everything")

	c.SetSearch("2024-03-02")
	require.Len(t, c.VisibleNotes(), 1, "timestamp text is searchable")
	assert.Equal(t, "b", c.VisibleNotes()[0].ID)
}

func TestSortOrders(t *testing.T) {
	store := &fakeStore{messages: []note.RawMessage{
		{ID: "old", Title: "banana", Rerum: note.Rerum{CreatedAt: "2024-01-01T10:00:00Z"}},
		{ID: "new", Title: "apple", Rerum: note.Rerum{CreatedAt: "2024-03-01T10:00:00Z"}},
		{ID: "mid", Title: "Cherry", Rerum: note.Rerum{CreatedAt: "2024-02-01T10:00:00Z"}},
	}}
	c := NewController(store, "u1", nil)
	res := runPage(t, c, c.StartInitial())
	require.True(t, c.Apply(res))

	ids := func() []string {
		visible := c.VisibleNotes()
		out := make([]string, len(visible))
		for i, n := range visible {
			out[i] = n.ID
		}
		return out
	}

	assert.Equal(t, []string{"new", "mid", "old"}, ids(), "default is most recent first")

	c.SetSort(SortTitleAZ)
	assert.Equal(t, []string{"new", "old", "mid"}, ids(), "title sort is case-insensitive")

	c.SetSort(SortTitleZA)
	assert.Equal(t, []string{"mid", "old", "new"}, ids())
}

func TestFooterStates(t *testing.T) {
	store := &fakeStore{messages: sampleMessages(20)}
	c := NewController(store, "u1", nil)

	assert.Equal(t, FooterLoading, c.FooterState(), "initial render is loading")

	res := runPage(t, c, c.StartInitial())
	require.True(t, c.Apply(res))
	assert.Equal(t, FooterLoadMore, c.FooterState())

	c.SetSearch("no such note anywhere")
	assert.Equal(t, FooterEmpty, c.FooterState(), "empty view wins over load-more")
	c.SetSearch("")

	_, ok := c.StartLoadMore()
	require.True(t, ok)
	assert.Equal(t, FooterLoading, c.FooterState())
}

func TestFilterResetsPagination(t *testing.T) {
	store := &fakeStore{messages: sampleMessages(40)}
	c := NewController(store, "u1", nil)

	res := runPage(t, c, c.StartInitial())
	require.True(t, c.Apply(res))
	more, ok := c.StartLoadMore()
	require.True(t, ok)
	require.True(t, c.Apply(runPage(t, c, more)))
	require.Equal(t, 2, c.Page())

	req := c.SetFilter(FilterPublished)
	assert.Equal(t, 1, req.Page)
	assert.True(t, req.Published)
	assert.Equal(t, FilterPublished, c.Filter())

	require.True(t, c.Apply(runPage(t, c, req)))
	assert.Equal(t, 1, c.Page())
	assert.Len(t, c.Loaded(), 20, "page one replaced the accumulated list")
}
