// Package store persists solved layout snapshots.
//
// A snapshot is keyed by the document hash and the root size it was solved
// for, so repeated solves of the same input can be served or compared
// without running the engine. [MongoStore] is the production backend and
// [MemoryStore] serves tests and configurations without a database.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Snapshot is the persisted result of one solve.
type Snapshot struct {
	ID        string           `json:"id" bson:"_id"`
	DocHash   string           `json:"doc_hash" bson:"doc_hash"`
	Root      string           `json:"root" bson:"root"`
	Width     float64          `json:"width" bson:"width"`
	Height    float64          `json:"height" bson:"height"`
	Frames    []document.Frame `json:"frames" bson:"frames"`
	Stats     layout.DiffStats `json:"stats" bson:"stats"`
	Ops       int              `json:"ops" bson:"ops"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// SnapshotID derives the snapshot id of a document solved at a root size.
func SnapshotID(docHash string, width, height float64) string {
	return fmt.Sprintf("%s@%gx%g", docHash, width, height)
}

// Store saves and loads snapshots.
type Store interface {
	// Save inserts or replaces the snapshot with the same ID.
	Save(ctx context.Context, s *Snapshot) error

	// Load returns the snapshot with the given ID or a NOT_FOUND error.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns the snapshots of a document, newest first.
	List(ctx context.Context, docHash string) ([]*Snapshot, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, s *Snapshot) error {
	if s.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot id is required")
	}
	cp := *s
	cp.Frames = append([]document.Frame(nil), s.Frames...)
	m.mu.Lock()
	m.items[s.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	s, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "snapshot %q not found", id)
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context, docHash string) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Snapshot
	for _, s := range m.items {
		if s.DocHash == docHash {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
