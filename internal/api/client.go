package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

// Sentinel strings returned by FetchCreatorName. Screen code renders
// these verbatim, so they are part of the method's contract.
const (
	UnknownCreator       = "Unknown Creator"
	CreatorNotAvailable  = "Creator not available"
	ErrRetrievingCreator = "Error retrieving creator"
)

// UserProfile is the profile shape shared by the message store's Agent
// documents and the identity service's user documents.
type UserProfile struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileStore looks up user profiles outside the message store.
// A nil profile with nil error means the user has no document.
type ProfileStore interface {
	GetUser(ctx context.Context, uid string) (*UserProfile, error)
}

// Client wraps the remote note store's REST endpoints. It is a pure
// request/response mapper: no retries, no caching, no local state.
//
// Error contracts differ per method and callers are written against
// them: the fetch/write/delete methods propagate errors, while
// FetchCreatorName and FetchUserData degrade to sentinels / nil.
type Client struct {
	baseURL    string
	profiles   ProfileStore
	httpClient *http.Client
	log        *zap.Logger
}

type queryRequest struct {
	Type      string `json:"type"`
	Creator   string `json:"creator,omitempty"`
	UID       string `json:"uid,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

type deleteRequest struct {
	ID string `json:"@id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// rawAgent is the store's Agent document, the message-store side of a
// user profile.
type rawAgent struct {
	ID   string `json:"@id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func NewClient(baseURL string, profiles ProfileStore, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		profiles: profiles,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// FetchMessages pages through every matching message by requesting
// limit at skip and recursing until a page comes back non-full. On any
// page failure the whole accumulation is abandoned and the error
// propagates; callers never see partial results.
func (c *Client) FetchMessages(ctx context.Context, global, published bool, userID string) ([]note.RawMessage, error) {
	return c.fetchAll(ctx, c.messageQuery(global, published, userID), 150, 0, nil)
}

func (c *Client) fetchAll(ctx context.Context, q queryRequest, limit, skip int, acc []note.RawMessage) ([]note.RawMessage, error) {
	page, err := c.postQuery(ctx, q, limit, skip)
	if err != nil {
		return nil, err
	}
	acc = append(acc, page...)
	if len(page) < limit {
		return acc, nil
	}
	return c.fetchAll(ctx, q, limit, skip+limit, acc)
}

// FetchMessagesBatch fetches a single page for the Library screen.
// It returns exactly what the server sent; deciding whether more pages
// exist is the caller's concern.
func (c *Client) FetchMessagesBatch(ctx context.Context, global, published bool, userID string, limit, skip int) ([]note.RawMessage, error) {
	return c.postQuery(ctx, c.messageQuery(global, published, userID), limit, skip)
}

// FetchMapMessagesBatch is the Explore screen's page fetch. Same wire
// shape as FetchMessagesBatch; kept separate because the two screens
// evolve their filters independently.
func (c *Client) FetchMapMessagesBatch(ctx context.Context, global, published bool, userID string, limit, skip int) ([]note.RawMessage, error) {
	return c.postQuery(ctx, c.messageQuery(global, published, userID), limit, skip)
}

// SearchMessages fetches the full unfiltered message set and matches
// the query case-insensitively against each title and tag. A linear
// scan over everything, chosen for simplicity over scalability.
func (c *Client) SearchMessages(ctx context.Context, query string) ([]note.RawMessage, error) {
	all, err := c.fetchAll(ctx, queryRequest{Type: "message"}, 150, 0, nil)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []note.RawMessage
	for _, msg := range all {
		if strings.Contains(strings.ToLower(msg.Title), needle) {
			matches = append(matches, msg)
			continue
		}
		for _, tag := range msg.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				matches = append(matches, msg)
				break
			}
		}
	}
	return matches, nil
}

// WriteNewNote creates a message document and returns it with the
// server-assigned @id and __rerum.createdAt.
func (c *Client) WriteNewNote(ctx context.Context, n note.Note) (note.RawMessage, error) {
	var created note.RawMessage
	// The store's paths are inconsistent: create carries a leading
	// slash, the others do not. It tolerates the doubled slash.
	if err := c.send(ctx, http.MethodPost, c.baseURL+"/create", n.ToRaw(), &created); err != nil {
		return note.RawMessage{}, err
	}
	return created, nil
}

// OverwriteNote replaces the stored document in place. Last writer
// wins; there is no conflict detection.
func (c *Client) OverwriteNote(ctx context.Context, n note.Note) error {
	return c.send(ctx, http.MethodPut, c.baseURL+"overwrite", n.ToRaw(), nil)
}

// DeleteNote removes the document with the given @id.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, c.baseURL+"delete", deleteRequest{ID: id}, nil)
}

// FetchCreatorName resolves a creator id to a display name: first the
// message store's Agent documents, then the profile store. It never
// returns an error; each failure mode maps to a sentinel string.
func (c *Client) FetchCreatorName(ctx context.Context, creatorID string) string {
	agents, err := c.queryAgents(ctx, creatorID)
	if err != nil {
		c.log.Warn("agent lookup failed", zap.String("creator", creatorID), zap.Error(err))
		return ErrRetrievingCreator
	}
	if len(agents) > 0 {
		if name := agents[0].Name; name != "" {
			return name
		}
		return UnknownCreator
	}

	profile, err := c.profileLookup(ctx, creatorID)
	if err != nil {
		c.log.Warn("profile lookup failed", zap.String("creator", creatorID), zap.Error(err))
		return ErrRetrievingCreator
	}
	if profile == nil {
		return CreatorNotAvailable
	}
	if profile.Name == "" {
		return UnknownCreator
	}
	return profile.Name
}

// FetchUserData looks up a user profile: identity service first, then
// the message store's Agent documents. Returns nil when neither source
// has data or a response is unparsable; errors are logged, not raised.
func (c *Client) FetchUserData(ctx context.Context, uid string) *UserProfile {
	profile, err := c.profileLookup(ctx, uid)
	if err != nil {
		c.log.Warn("profile lookup failed", zap.String("uid", uid), zap.Error(err))
	}
	if profile != nil {
		return profile
	}

	agents, err := c.queryAgents(ctx, uid)
	if err != nil {
		c.log.Warn("agent fallback failed", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	if len(agents) == 0 {
		return nil
	}
	return &UserProfile{UID: uid, Name: agents[0].Name}
}

func (c *Client) queryAgents(ctx context.Context, uid string) ([]rawAgent, error) {
	url := fmt.Sprintf("%squery?limit=1&skip=0", c.baseURL)
	var agents []rawAgent
	if err := c.send(ctx, http.MethodPost, url, queryRequest{Type: "Agent", UID: uid}, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *Client) profileLookup(ctx context.Context, uid string) (*UserProfile, error) {
	if c.profiles == nil {
		return nil, nil
	}
	return c.profiles.GetUser(ctx, uid)
}

func (c *Client) messageQuery(global, published bool, userID string) queryRequest {
	q := queryRequest{Type: "message", Published: &published}
	if !global && userID != "" {
		q.Creator = userID
	}
	return q
}

// HTTP helpers

func (c *Client) postQuery(ctx context.Context, q queryRequest, limit, skip int) ([]note.RawMessage, error) {
	url := fmt.Sprintf("%squery?limit=%d&skip=%d", c.baseURL, limit, skip)
	var page []note.RawMessage
	if err := c.send(ctx, http.MethodPost, url, q, &page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) send(ctx context.Context, method, url string, body, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
