package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, idle time.Duration, now *time.Time) *SessionStore {
	t.Helper()
	s := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"), idle)
	s.now = func() time.Time { return *now }
	return s
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, 30*time.Minute, &now)

	require.NoError(t, s.Save(&Session{BaseURL: "http://crm", Token: "tok", Email: "a@crm.test"}))

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	now = now.Add(10 * time.Minute)
	sess, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "http://crm", sess.BaseURL)
	assert.True(t, sess.LastUsed.Equal(now.Add(-10*time.Minute)))
}

func TestSessionStore_IdleSessionIsCleared(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, 30*time.Minute, &now)
	require.NoError(t, s.Save(&Session{Token: "tok"}))

	now = now.Add(31 * time.Minute)
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, statErr := os.Stat(s.path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_SaveRefreshesIdleTimer(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, 30*time.Minute, &now)
	sess := &Session{Token: "tok"}
	require.NoError(t, s.Save(sess))

	now = now.Add(20 * time.Minute)
	require.NoError(t, s.Save(sess))

	now = now.Add(20 * time.Minute)
	_, err := s.Load()
	assert.NoError(t, err)
}

func TestSessionStore_ZeroIdleNeverExpires(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, 0, &now)
	require.NoError(t, s.Save(&Session{Token: "tok"}))

	now = now.Add(90 * 24 * time.Hour)
	_, err := s.Load()
	assert.NoError(t, err)
}

func TestSessionStore_CorruptFileIsDiscarded(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, time.Hour, &now)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.path), 0o700))
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o600))

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, s.Clear())
}
