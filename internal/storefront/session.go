package storefront

import (
	"encoding/json"
	"fmt"
	"sync"

	"mobilehub/internal/localstore"
	"mobilehub/internal/models"
)

const sessionKey = "user"

// SessionStore holds the signed-in identity and mirrors every change to the
// local store under the "user" key.
type SessionStore struct {
	mu      sync.RWMutex
	store   localstore.Store
	current *models.Session
}

// NewSessionStore reads the persisted session once. An unreadable value is
// dropped rather than treated as signed in.
func NewSessionStore(store localstore.Store) (*SessionStore, error) {
	s := &SessionStore{store: store}

	raw, ok, err := store.Get(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if ok {
		var session models.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil || session.Email == "" {
			if err := store.Delete(sessionKey); err != nil {
				return nil, fmt.Errorf("failed to drop unreadable session: %w", err)
			}
		} else {
			s.current = &session
		}
	}
	return s, nil
}

// Current returns a copy of the signed-in session.
func (s *SessionStore) Current() (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	session := *s.current
	return &session, true
}

func (s *SessionStore) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *SessionStore) Set(session models.Session) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(sessionKey, string(encoded)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.current = &session
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.current = nil
	return nil
}

// Update applies fn to the current session and persists the result.
func (s *SessionStore) Update(fn func(*models.Session)) error {
	current, ok := s.Current()
	if !ok {
		return ErrNoActiveSession
	}
	fn(current)
	return s.Set(*current)
}
