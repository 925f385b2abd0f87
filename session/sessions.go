// Package session manages in-memory conversation sessions. History lives
// for the process lifetime only; the durable state is the database file,
// not the chat transcript.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dbchat/model"
)

// Session is one conversation: an append-only, ordered turn sequence.
type Session struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Model     string          `json:"model"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []model.Message `json:"messages"`

	// mu serializes turns within the session: each chat turn is handled
	// sequentially, the remote model call blocks that turn only.
	mu sync.Mutex
}

// Lock takes the session's turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Metadata is a lightweight view of a session for listing.
type Metadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Manager holds all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a new session for the given model name.
func (m *Manager) Create(modelName string) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// List returns metadata for all sessions, newest first.
func (m *Manager) List() []Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Metadata, 0, len(m.sessions))
	for _, s := range m.sessions {
		// Name, UpdatedAt and Messages are mutated under the session's own
		// lock during a chat turn, so take it for the metadata read too.
		s.mu.Lock()
		list = append(list, Metadata{
			ID:           s.ID,
			Name:         s.Name,
			Model:        s.Model,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: len(s.Messages),
		})
		s.mu.Unlock()
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})

	return list
}

// Append adds turns to the session. The first user message names the
// session.
func (s *Session) Append(turns ...model.Message) {
	if s.Name == "" {
		for _, t := range turns {
			if t.Role == "user" {
				s.Name = GenerateSessionName(t.Content)
				break
			}
		}
	}
	s.Messages = append(s.Messages, turns...)
	s.UpdatedAt = time.Now()
}

// ExportToJSON writes the session to a JSON file at the given path.
func (s *Session) ExportToJSON(exportPath string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600: exports contain conversation history
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// GenerateSessionName generates a session name from the first user message
func GenerateSessionName(firstMessage string) string {
	if firstMessage == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Session %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	return name
}

// MessageMatch represents a search result within a session
type MessageMatch struct {
	MessageIndex int       `json:"message_index"`
	Role         string    `json:"role"`
	Preview      string    `json:"preview"`
	Timestamp    time.Time `json:"timestamp"`
}

// SearchMessages searches a session's messages by substring, ignoring case.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for i, msg := range messages {
		if msg.Role == "system" {
			continue
		}

		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			preview := msg.Content
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}

			matches = append(matches, MessageMatch{
				MessageIndex: i,
				Role:         msg.Role,
				Preview:      preview,
				Timestamp:    msg.Timestamp,
			})
		}
	}

	return matches
}
