package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	snap := &Snapshot{
		ID:        SnapshotID("doc", 400, 300),
		DocHash:   "doc",
		Root:      "root",
		Width:     400,
		Height:    300,
		Frames:    []document.Frame{{Name: "root", Width: 400, Height: 300}},
		Stats:     layout.DiffStats{ConstraintsAdded: 3},
		Ops:       3,
		CreatedAt: time.Unix(100, 0),
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap.Frames[0].Width = 1

	got, err := s.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Frames[0].Width != 400 {
		t.Errorf("stored frames alias the caller's slice")
	}
	if got.Stats.ConstraintsAdded != 3 {
		t.Errorf("Stats = %+v, want 3 added", got.Stats)
	}

	_, err = s.Load(ctx, "missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i, size := range []float64{100, 200, 300} {
		_ = s.Save(ctx, &Snapshot{
			ID:        SnapshotID("doc", size, size),
			DocHash:   "doc",
			CreatedAt: time.Unix(int64(i), 0),
		})
	}
	_ = s.Save(ctx, &Snapshot{ID: "other", DocHash: "other"})

	list, err := s.List(ctx, "doc")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, snap := range list {
		ids = append(ids, snap.ID)
	}
	want := []string{"doc@300x300", "doc@200x200", "doc@100x100"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRequiresID(t *testing.T) {
	err := NewMemoryStore().Save(context.Background(), &Snapshot{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save() = %v, want INVALID_INPUT", err)
	}
}
