// Package explore owns the Explore screen state: the geolocated marker
// set fetched in batches, free-text search that replaces it, and the
// sync between the detail carousel and the map camera.
package explore

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/convert"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

const DefaultLimit = 20

// Fetcher is the slice of the API client the controller needs.
type Fetcher interface {
	FetchMapMessagesBatch(ctx context.Context, global, published bool, userID string, limit, skip int) ([]note.RawMessage, error)
	SearchMessages(ctx context.Context, query string) ([]note.RawMessage, error)
}

type MarkerRequest struct {
	Generation uint64
	Page       int
	Limit      int
	Global     bool
	UserID     string
	Query      string // non-empty for search requests
}

type MarkerResult struct {
	Request      MarkerRequest
	FetchedCount int
	Markers      []note.Marker
}

type Controller struct {
	fetcher Fetcher
	userID  string
	log     *zap.Logger

	limit      int
	page       int
	hasMore    bool
	loading    bool
	generation uint64

	global    bool
	searching bool

	markers []note.Marker
	region  note.Coordinate

	locationDenied bool
}

func NewController(fetcher Fetcher, userID string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fetcher: fetcher,
		userID:  userID,
		log:     log,
		limit:   DefaultLimit,
		page:    1,
		hasMore: true,
	}
}

// SetLocation centers the map region on the device position.
func (c *Controller) SetLocation(lat, lng float64) {
	c.locationDenied = false
	c.region = note.Coordinate{Latitude: lat, Longitude: lng}
}

// DenyLocation records a permission denial: zeroed region, error state
// for the screen to surface.
func (c *Controller) DenyLocation() {
	c.locationDenied = true
	c.region = note.Coordinate{}
}

func (c *Controller) LocationDenied() bool    { return c.locationDenied }
func (c *Controller) Region() note.Coordinate { return c.region }
func (c *Controller) Markers() []note.Marker  { return c.markers }
func (c *Controller) Global() bool            { return c.global }
func (c *Controller) Searching() bool         { return c.searching }
func (c *Controller) Loading() bool           { return c.loading }

// LoadMoreVisible reports whether the screen should offer another
// page: only when the last batch came back full and no search result
// set is on display.
func (c *Controller) LoadMoreVisible() bool {
	return c.hasMore && !c.searching && !c.loading
}

func (c *Controller) StartInitial() MarkerRequest {
	c.generation++
	c.page = 1
	c.hasMore = true
	c.loading = true
	c.searching = false
	return c.request(1)
}

func (c *Controller) StartLoadMore() (MarkerRequest, bool) {
	if !c.LoadMoreVisible() {
		return MarkerRequest{}, false
	}
	c.loading = true
	return c.request(c.page + 1), true
}

// ToggleGlobal flips the globe filter. Any active search result set is
// cleared and the markers refetch from page one.
func (c *Controller) ToggleGlobal() MarkerRequest {
	c.global = !c.global
	return c.StartInitial()
}

// StartSearch begins a free-text search whose results will replace the
// marker set entirely; pagination does not apply to search results.
func (c *Controller) StartSearch(query string) MarkerRequest {
	c.generation++
	c.loading = true
	return MarkerRequest{Generation: c.generation, Query: query, Global: c.global, UserID: c.userID}
}

func (c *Controller) request(page int) MarkerRequest {
	return MarkerRequest{
		Generation: c.generation,
		Page:       page,
		Limit:      c.limit,
		Global:     c.global,
		UserID:     c.userID,
	}
}

// Fetch executes a marker or search request. Stateless; safe to run
// off the event loop.
func (c *Controller) Fetch(ctx context.Context, req MarkerRequest) (MarkerResult, error) {
	var raw []note.RawMessage
	var err error
	if req.Query != "" {
		raw, err = c.fetcher.SearchMessages(ctx, req.Query)
	} else {
		raw, err = c.fetcher.FetchMapMessagesBatch(ctx, req.Global, true, req.UserID, req.Limit, (req.Page-1)*req.Limit)
	}
	if err != nil {
		return MarkerResult{}, err
	}

	notes := convert.ConvertMediaTypes(raw)
	markers := make([]note.Marker, 0, len(notes))
	for _, n := range notes {
		markers = append(markers, c.BuildMarker(n))
	}
	return MarkerResult{Request: req, FetchedCount: len(raw), Markers: markers}, nil
}

// Apply folds a completed fetch in, dropping stale generations.
// Search results replace the set and hide pagination; page one
// replaces, later pages append.
func (c *Controller) Apply(res MarkerResult) bool {
	if res.Request.Generation != c.generation {
		c.log.Debug("dropping stale markers",
			zap.Uint64("got", res.Request.Generation),
			zap.Uint64("want", c.generation))
		return false
	}
	c.loading = false

	if res.Request.Query != "" {
		c.markers = res.Markers
		c.searching = true
		return true
	}

	if res.Request.Page == 1 {
		c.markers = res.Markers
	} else {
		c.markers = append(c.markers, res.Markers...)
	}
	c.page = res.Request.Page
	c.hasMore = res.FetchedCount == res.Request.Limit
	return true
}

func (c *Controller) Fail(req MarkerRequest, err error) bool {
	c.log.Warn("marker fetch failed", zap.Error(err))
	if req.Generation != c.generation {
		return false
	}
	c.loading = false
	return true
}

// BuildMarker projects a note onto the map. Coordinates that fail to
// parse coerce to 0 and still plot; the mis-plot is logged so it is
// visible somewhere.
func (c *Controller) BuildMarker(n note.Note) note.Marker {
	lat, latErr := strconv.ParseFloat(n.Latitude, 64)
	lng, lngErr := strconv.ParseFloat(n.Longitude, 64)
	if latErr != nil || lngErr != nil {
		c.log.Warn("unparsable coordinates",
			zap.String("note", n.ID),
			zap.String("latitude", n.Latitude),
			zap.String("longitude", n.Longitude))
	}

	images := make([]string, 0, len(n.Media))
	for _, m := range n.Media {
		images = append(images, m.DisplayImage())
	}

	return note.Marker{
		Coordinate:  note.Coordinate{Latitude: lat, Longitude: lng},
		Title:       n.Title,
		Description: n.Text,
		Images:      images,
		Time:        n.Time,
		Tags:        n.Tags,
		Creator:     n.Creator,
		CreatedAt:   n.Time.Format(time.RFC3339),
	}
}

// NearestIndex maps a carousel scroll offset to the marker the camera
// should center on.
func NearestIndex(scrollOffset, cardWidth float64, count int) int {
	if count == 0 || cardWidth <= 0 {
		return 0
	}
	idx := int(scrollOffset/cardWidth + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= count {
		idx = count - 1
	}
	return idx
}

// SyncGate suppresses redundant camera moves while the carousel is
// scrolled quickly. Moves inside the window are held as pending and
// released by Flush once the window has passed.
type SyncGate struct {
	window    time.Duration
	lastIndex int
	lastMove  time.Time
	pending   int
	held      bool
}

func NewSyncGate(window time.Duration) *SyncGate {
	return &SyncGate{window: window, lastIndex: -1, pending: -1}
}

// ShouldMove reports whether the camera should animate to index now.
func (g *SyncGate) ShouldMove(index int, now time.Time) bool {
	if index == g.lastIndex {
		return false
	}
	if now.Sub(g.lastMove) < g.window {
		g.pending = index
		g.held = true
		return false
	}
	g.lastIndex = index
	g.lastMove = now
	g.held = false
	return true
}

// Flush releases a held move once the debounce window has passed.
func (g *SyncGate) Flush(now time.Time) (int, bool) {
	if !g.held || now.Sub(g.lastMove) < g.window {
		return 0, false
	}
	idx := g.pending
	g.held = false
	if idx == g.lastIndex {
		return 0, false
	}
	g.lastIndex = idx
	g.lastMove = now
	return idx, true
}
