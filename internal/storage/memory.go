package storage

import (
	"sync"

	"github.com/intervox/intervox/internal/interview"
)

// MemoryStore keeps interview state in process memory. It backs the server
// when the sqlite database cannot be opened: the app stays usable but saved
// progress and history do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *interview.Snapshot
	history  []interview.Result
	visits   int
	session  string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadSnapshot() (*interview.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil {
		return nil, nil
	}
	snap := *m.snapshot
	return &snap, nil
}

func (m *MemoryStore) SaveSnapshot(snap interview.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = &snap
	return nil
}

func (m *MemoryStore) ClearSnapshot() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = nil
	return nil
}

func (m *MemoryStore) PrependResult(result interview.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append([]interview.Result{result}, m.history...)
	return nil
}

func (m *MemoryStore) ListResults() ([]interview.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]interview.Result, len(m.history))
	copy(results, m.history)
	return results, nil
}

func (m *MemoryStore) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = nil
	return nil
}

func (m *MemoryStore) RecordVisit(sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != "" && m.session == sessionID {
		return m.visits, nil
	}
	m.visits++
	if sessionID != "" {
		m.session = sessionID
	}
	return m.visits, nil
}

func (m *MemoryStore) VisitCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.visits, nil
}
