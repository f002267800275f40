package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrNoSession      = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
)

// Session is the persisted login of the CLI user.
type Session struct {
	BaseURL  string    `json:"baseURL"`
	Token    string    `json:"token"`
	Email    string    `json:"email"`
	LastUsed time.Time `json:"lastUsed"`
}

// SessionStore keeps a single session file. A session unused for longer than
// idle is removed on Load; idle <= 0 disables expiry.
type SessionStore struct {
	path string
	idle time.Duration
	now  func() time.Time
}

func NewSessionStore(path string, idle time.Duration) *SessionStore {
	return &SessionStore{path: path, idle: idle, now: time.Now}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".crmctl", "session.json")
	}
	return filepath.Join(home, ".crmctl", "session.json")
}

func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		_ = s.Clear()
		return nil, ErrNoSession
	}

	if s.idle > 0 && s.now().Sub(sess.LastUsed) > s.idle {
		if err := s.Clear(); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

// Save writes sess with LastUsed set to now.
func (s *SessionStore) Save(sess *Session) error {
	sess.LastUsed = s.now().UTC()
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
