// Package identity holds the authenticated-user context and looks up
// user profile documents from the identity backend. The service is an
// explicitly constructed value injected into whatever needs it; tests
// substitute a fake without touching package state.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

type Service struct {
	project    string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	current *api.UserProfile
}

func NewService(project, apiKey string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		project: project,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// WithBaseURL points the service at a different document endpoint.
func (s *Service) WithBaseURL(u string) *Service {
	s.baseURL = u
	return s
}

// SignIn records the current user. Driven by the auth state callback
// at startup.
func (s *Service) SignIn(profile api.UserProfile) {
	s.current = &profile
}

func (s *Service) SignOut() { s.current = nil }

// Current returns the signed-in user, or nil.
func (s *Service) Current() *api.UserProfile { return s.current }

// UserID returns the signed-in uid, or "" when browsing anonymously.
func (s *Service) UserID() string {
	if s.current == nil {
		return ""
	}
	return s.current.UID
}

// firestoreDoc is the document read response: typed value wrappers per
// field.
type firestoreDoc struct {
	Fields map[string]struct {
		StringValue string `json:"stringValue"`
	} `json:"fields"`
}

// GetUser reads users/{uid}. A missing document is (nil, nil); only
// transport and decode failures surface as errors.
func (s *Service) GetUser(ctx context.Context, uid string) (*api.UserProfile, error) {
	url := fmt.Sprintf("%s/projects/%s/databases/(default)/documents/users/%s?key=%s",
		s.baseURL, s.project, uid, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("profile request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}

	var doc firestoreDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, nil
	}

	return &api.UserProfile{
		UID:   uid,
		Name:  doc.Fields["name"].StringValue,
		Email: doc.Fields["email"].StringValue,
	}, nil
}
