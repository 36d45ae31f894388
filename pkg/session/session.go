// Package session keeps long-lived layout sessions for the HTTP service.
//
// A session owns a built view tree and the incremental Diff Cache that
// remembers what the solver currently holds for it, so that a client can
// resize the root repeatedly and pay only for what changed. One pass at a
// time may run against a cache: callers go through [Session.Do], which
// serializes access per session.
//
// Two storage layers exist:
//   - [MemoryStore]: live sessions with TTL expiry
//   - [FileStore]: the document and root size of each session as JSON, so
//     a restarted server can rebuild sessions on demand
//
// # Usage
//
//	sess, err := session.New(doc, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	err = sess.Do(func(s *session.Session) error {
//	    s.Built.ResizeRoot(800, 600)
//	    _, err := engine.Solve(s.Built.Root, s.Cache)
//	    return err
//	})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one client's live layout.
type Session struct {
	ID        string
	Doc       *document.Document
	DocHash   string
	Built     *document.Built
	Cache     *layout.Cache
	CreatedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
	ttl       time.Duration
}

// New builds doc and wraps it in a session with a fresh Diff Cache.
func New(doc *document.Document, ttl time.Duration) (*Session, error) {
	return newWithID(uuid.NewString(), doc, ttl)
}

func newWithID(id string, doc *document.Document, ttl time.Duration) (*Session, error) {
	built, err := document.Build(doc)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Doc:       doc,
		DocHash:   document.Hash(doc),
		Built:     built,
		Cache:     layout.NewCache(),
		CreatedAt: now,
		expiresAt: now.Add(ttl),
		ttl:       ttl,
	}, nil
}

// Do runs fn with exclusive access to the session and extends its
// lifetime.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
	return fn(s)
}

// ExpiresAt returns the time the session expires unless used again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt())
}

// Record returns the persistable part of the session.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.Built.Root.Frame()
	return Record{
		ID:        s.ID,
		Document:  s.Doc,
		Width:     f.Width,
		Height:    f.Height,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.expiresAt,
	}
}

// Store is the interface for live session storage.
type Store interface {
	// Get retrieves a session by ID. It returns ErrNotFound for unknown ids
	// and ErrExpired for sessions past their TTL.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
