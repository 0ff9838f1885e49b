package storage

import (
	"testing"

	"github.com/intervox/intervox/internal/interview"
)

var (
	_ interview.SnapshotStore = (*SQLiteStore)(nil)
	_ interview.HistoryStore  = (*SQLiteStore)(nil)
	_ interview.SnapshotStore = (*MemoryStore)(nil)
	_ interview.HistoryStore  = (*MemoryStore)(nil)
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	snap := testSnapshot()
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded == nil || loaded.CurrentIndex != snap.CurrentIndex {
		t.Fatalf("expected snapshot round trip, got %+v", loaded)
	}

	// Mutating the loaded copy must not affect the stored snapshot.
	loaded.CurrentIndex = 99
	again, _ := store.LoadSnapshot()
	if again.CurrentIndex != snap.CurrentIndex {
		t.Errorf("expected stored snapshot unchanged, got index %d", again.CurrentIndex)
	}

	if err := store.PrependResult(interview.Result{Language: "Go"}); err != nil {
		t.Fatalf("PrependResult failed: %v", err)
	}
	results, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 || results[0].Language != "Go" {
		t.Fatalf("expected one Go result, got %+v", results)
	}
}
