// Package library owns the note-list state for the Library screen:
// batch pagination, the published/private filter, in-memory search and
// sorting, and the footer state the screen renders.
package library

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/convert"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

const DefaultLimit = 20

type Filter int

const (
	FilterPrivate Filter = iota
	FilterPublished
)

type SortOrder int

const (
	SortRecent SortOrder = iota
	SortTitleAZ
	SortTitleZA
)

type Footer int

const (
	FooterNone Footer = iota
	FooterLoading
	FooterLoadMore
	FooterEmpty // "No Results Found"
)

// Fetcher is the slice of the API client the controller needs.
type Fetcher interface {
	FetchMessagesBatch(ctx context.Context, global, published bool, userID string, limit, skip int) ([]note.RawMessage, error)
}

// PageRequest describes one in-flight page fetch. Generation ties the
// response back to the controller state that issued it; a response
// whose generation no longer matches is dropped instead of silently
// overwriting newer state.
type PageRequest struct {
	Generation uint64
	Page       int
	Limit      int
	Published  bool
	UserID     string
}

// Controller is not safe for concurrent use; it is driven from a
// single event loop, with fetches running between Start* and Apply.
type Controller struct {
	fetcher Fetcher
	userID  string
	log     *zap.Logger

	limit       int
	page        int
	hasMore     bool
	loadingMore bool
	rendering   bool
	generation  uint64

	filter Filter
	sortBy SortOrder
	search string

	notes []note.Note
}

func NewController(fetcher Fetcher, userID string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fetcher:   fetcher,
		userID:    userID,
		log:       log,
		limit:     DefaultLimit,
		page:      1,
		hasMore:   true,
		rendering: true,
	}
}

// StartInitial begins a first-page load, invalidating any response
// still in flight.
func (c *Controller) StartInitial() PageRequest {
	c.generation++
	c.page = 1
	c.hasMore = true
	c.loadingMore = false
	c.rendering = true
	return c.request(1)
}

// StartLoadMore begins the next page fetch. It is only reachable when
// the footer offers it: more pages expected and nothing loading.
func (c *Controller) StartLoadMore() (PageRequest, bool) {
	if !c.hasMore || c.loadingMore || c.rendering {
		return PageRequest{}, false
	}
	c.loadingMore = true
	return c.request(c.page + 1), true
}

// SetFilter switches between private and published notes and resets
// pagination. The in-flight load-more, if any, is abandoned via the
// generation bump.
func (c *Controller) SetFilter(f Filter) PageRequest {
	c.filter = f
	return c.StartInitial()
}

func (c *Controller) request(page int) PageRequest {
	return PageRequest{
		Generation: c.generation,
		Page:       page,
		Limit:      c.limit,
		Published:  c.filter == FilterPublished,
		UserID:     c.userID,
	}
}

// Fetch executes the request against the store and converts the page.
// It holds no controller state, so it can run off the event loop.
// Archived notes are dropped here, after the raw count is taken: the
// has-more heuristic looks at what the server sent, not what survives.
func (c *Controller) Fetch(ctx context.Context, req PageRequest) (PageResult, error) {
	raw, err := c.fetcher.FetchMessagesBatch(ctx, false, req.Published, req.UserID, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return PageResult{}, err
	}

	kept := raw[:0]
	for _, msg := range raw {
		if msg.IsArchived {
			continue
		}
		kept = append(kept, msg)
	}

	return PageResult{
		Request:      req,
		FetchedCount: len(raw),
		Notes:        convert.ConvertMediaTypes(kept),
	}, nil
}

type PageResult struct {
	Request      PageRequest
	FetchedCount int
	Notes        []note.Note
}

// Apply folds a completed fetch into the controller. Stale results
// (generation mismatch) return false and change nothing.
func (c *Controller) Apply(res PageResult) bool {
	if res.Request.Generation != c.generation {
		c.log.Debug("dropping stale page",
			zap.Uint64("got", res.Request.Generation),
			zap.Uint64("want", c.generation))
		return false
	}

	if res.Request.Page == 1 {
		c.notes = res.Notes
		c.rendering = false
	} else {
		c.notes = append(c.notes, res.Notes...)
		c.loadingMore = false
	}
	c.page = res.Request.Page
	c.hasMore = res.FetchedCount == res.Request.Limit
	return true
}

// Fail clears the loading flags for a failed fetch of the current
// generation. The notes already on screen are kept.
func (c *Controller) Fail(req PageRequest, err error) bool {
	c.log.Warn("page fetch failed", zap.Int("page", req.Page), zap.Error(err))
	if req.Generation != c.generation {
		return false
	}
	c.rendering = false
	c.loadingMore = false
	return true
}

// SetSearch filters the loaded notes; it never triggers a fetch, so
// search only covers pages already in memory.
func (c *Controller) SetSearch(query string) { c.search = query }

func (c *Controller) SetSort(s SortOrder) { c.sortBy = s }

func (c *Controller) Filter() Filter     { return c.filter }
func (c *Controller) Sort() SortOrder    { return c.sortBy }
func (c *Controller) Search() string     { return c.search }
func (c *Controller) Page() int          { return c.page }
func (c *Controller) HasMore() bool      { return c.hasMore }
func (c *Controller) Rendering() bool    { return c.rendering }
func (c *Controller) LoadingMore() bool  { return c.loadingMore }
func (c *Controller) Loaded() []note.Note { return c.notes }

// VisibleNotes applies the search filter and sort to the loaded pages.
// Recomputed on every render; nothing is cached.
func (c *Controller) VisibleNotes() []note.Note {
	visible := filterNotes(c.notes, c.search)
	sortNotes(visible, c.sortBy)
	return visible
}

// FooterState decides the list footer: a spinner while a page loads,
// the load-more affordance while more pages are expected, and the
// empty message only when nothing at all is visible.
func (c *Controller) FooterState() Footer {
	if c.loadingMore || c.rendering {
		return FooterLoading
	}
	if len(c.VisibleNotes()) == 0 {
		return FooterEmpty
	}
	if c.hasMore {
		return FooterLoadMore
	}
	return FooterNone
}

func filterNotes(notes []note.Note, query string) []note.Note {
	out := make([]note.Note, 0, len(notes))
	if query == "" {
		return append(out, notes...)
	}
	needle := strings.ToLower(query)
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), needle) {
			out = append(out, n)
			continue
		}
		if strings.Contains(n.Time.Format("2006-01-02 15:04"), needle) {
			out = append(out, n)
		}
	}
	return out
}

func sortNotes(notes []note.Note, order SortOrder) {
	switch order {
	case SortTitleAZ:
		sort.SliceStable(notes, func(i, j int) bool {
			return strings.ToLower(notes[i].Title) < strings.ToLower(notes[j].Title)
		})
	case SortTitleZA:
		sort.SliceStable(notes, func(i, j int) bool {
			return strings.ToLower(notes[i].Title) > strings.ToLower(notes[j].Title)
		})
	default:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Time.After(notes[j].Time)
		})
	}
}
