package devserver

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

// Store is the in-memory document store behind the dev server.
// Documents keep insertion order, which is what the paginated query
// endpoint slices over.
type Store struct {
	mu       sync.RWMutex
	messages []note.RawMessage
	agents   []Agent
	objects  map[string][]byte
}

type Agent struct {
	ID   string `json:"@id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func NewStore() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func newDocID() string {
	return "https://store.local/v1/id/" + uuid.NewString()
}

// AddAgent seeds an Agent document; used by the serve command and
// integration tests.
func (s *Store) AddAgent(uid, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = append(s.agents, Agent{ID: newDocID(), UID: uid, Name: name})
}

func (s *Store) CreateMessage(msg note.RawMessage) note.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = newDocID()
	msg.Type = "message"
	msg.Rerum = note.Rerum{CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	s.messages = append(s.messages, msg)
	return msg
}

// OverwriteMessage replaces the document in place. Last writer wins.
func (s *Store) OverwriteMessage(msg note.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.messages {
		if existing.ID == msg.ID {
			msg.Rerum = note.Rerum{
				CreatedAt:     existing.Rerum.CreatedAt,
				IsOverwritten: time.Now().UTC().Format(time.RFC3339),
			}
			s.messages[i] = msg
			return true
		}
	}
	return false
}

func (s *Store) DeleteMessage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.messages {
		if existing.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// QueryMessages filters by creator/published and slices limit at skip.
func (s *Store) QueryMessages(creator string, published *bool, limit, skip int) []note.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []note.RawMessage
	for _, msg := range s.messages {
		if creator != "" && msg.Creator != creator {
			continue
		}
		if published != nil && msg.Published != *published {
			continue
		}
		matched = append(matched, msg)
	}

	if skip >= len(matched) {
		return []note.RawMessage{}
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end]
}

func (s *Store) QueryAgents(uid string) []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Agent
	for _, a := range s.agents {
		if uid == "" || strings.EqualFold(a.UID, uid) {
			matched = append(matched, a)
		}
	}
	if matched == nil {
		return []Agent{}
	}
	return matched
}

func (s *Store) PutObject(name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if ext := extension(name); ext != "" {
		id += ext
	}
	s.objects[id] = data
	return id
}

func (s *Store) GetObject(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[id]
	return data, ok
}

func extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
