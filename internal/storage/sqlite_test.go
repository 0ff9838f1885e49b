package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func testSnapshot() interview.Snapshot {
	return interview.Snapshot{
		LanguageID:   "go",
		Technology:   "Go",
		Difficulty:   interview.DifficultyMid,
		UILanguage:   interview.LangEnglish,
		CurrentIndex: 1,
		Responses: []interview.Response{
			{QuestionID: "q1", QuestionText: "What is a goroutine?", UserAnswer: "A lightweight thread.", Score: 80},
		},
		Questions: []interview.Question{
			{ID: "q1", Text: "What is a goroutine?", Category: "Concurrency"},
			{ID: "q2", Text: "Explain channels.", Category: "Concurrency"},
		},
		Timestamp: time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC),
	}
}

func TestSQLitePragmas(t *testing.T) {
	store := newTestSQLiteStore(t)

	var mode string
	if err := store.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode failed: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected journal_mode wal, got %q", mode)
	}

	var timeout int
	if err := store.DB().QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout failed: %v", err)
	}
	if timeout < 5000 {
		t.Fatalf("expected busy_timeout >= 5000, got %d", timeout)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no snapshot in fresh store, got %+v", loaded)
	}

	snap := testSnapshot()
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err = store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected saved snapshot, got nil")
	}
	if loaded.CurrentIndex != snap.CurrentIndex {
		t.Errorf("expected CurrentIndex %d, got %d", snap.CurrentIndex, loaded.CurrentIndex)
	}
	if len(loaded.Questions) != 2 || len(loaded.Responses) != 1 {
		t.Errorf("expected 2 questions and 1 response, got %d and %d", len(loaded.Questions), len(loaded.Responses))
	}
	if !loaded.Timestamp.Equal(snap.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", snap.Timestamp, loaded.Timestamp)
	}

	if err := store.ClearSnapshot(); err != nil {
		t.Fatalf("ClearSnapshot failed: %v", err)
	}
	loaded, err = store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected snapshot cleared, got %+v", loaded)
	}
}

func TestCorruptSnapshotTreatedAsAbsent(t *testing.T) {
	store := newTestSQLiteStore(t)

	if err := store.putSlot(keySnapshot, "{not valid json"); err != nil {
		t.Fatalf("putSlot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected corrupt snapshot to read as absent, got %+v", loaded)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newTestSQLiteStore(t)

	first := interview.Result{Language: "Go", OverallScore: 70, Date: time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC)}
	second := interview.Result{Language: "Python", OverallScore: 85, Date: time.Date(2026, 2, 26, 9, 0, 0, 0, time.UTC)}

	if err := store.PrependResult(first); err != nil {
		t.Fatalf("PrependResult failed: %v", err)
	}
	if err := store.PrependResult(second); err != nil {
		t.Fatalf("PrependResult failed: %v", err)
	}

	results, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Language != "Python" || results[1].Language != "Go" {
		t.Errorf("expected newest first, got %q then %q", results[0].Language, results[1].Language)
	}

	if err := store.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	results, err = store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty history after clear, got %d results", len(results))
	}
}

func TestRecordVisitOncePerSession(t *testing.T) {
	store := newTestSQLiteStore(t)

	count, err := store.RecordVisit("session-a")
	if err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected first visit count 1, got %d", count)
	}

	count, err = store.RecordVisit("session-a")
	if err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected repeat visit in same session to not increment, got %d", count)
	}

	count, err = store.RecordVisit("session-b")
	if err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected new session to increment to 2, got %d", count)
	}
}
