package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Record is the persisted form of a session: enough to rebuild it.
type Record struct {
	ID        string             `json:"id"`
	Document  *document.Document `json:"document"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Restore rebuilds a live session from the record. The Diff Cache starts
// empty, so the first pass after a restore is a full one.
func (r *Record) Restore(ttl time.Duration) (*Session, error) {
	s, err := newWithID(r.ID, r.Document, ttl)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = r.CreatedAt
	s.Built.ResizeRoot(r.Width, r.Height)
	return s, nil
}

// FileStore persists session records as JSON files.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based record store.
// If baseDir is empty, defaults to ~/.config/anchorlayout/sessions/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "anchorlayout", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Load returns the record for id, ErrNotFound if there is none and
// ErrExpired if it has expired (the file is removed).
func (s *FileStore) Load(_ context.Context, id string) (*Record, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.recordPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if time.Now().After(rec.ExpiresAt) {
		os.Remove(path)
		return nil, ErrExpired
	}
	return &rec, nil
}

// Save writes rec, replacing any previous record with the same ID.
func (s *FileStore) Save(_ context.Context, rec Record) error {
	if err := errors.ValidateSessionID(rec.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.recordPath(rec.ID), data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Delete removes the record for id.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := errors.ValidateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Cleanup removes expired records.
func (s *FileStore) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if now.After(rec.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}
