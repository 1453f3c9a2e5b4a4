package runstore

import (
	"fmt"
	"sync"

	"github.com/aeropilot-ai/aeropilot/core"
)

// Store persists completed run results keyed by run id. Implementations must
// be safe for concurrent access and must return independent copies so callers
// cannot mutate retained state.
type Store interface {
	// Save records a clone of the result under its run id.
	Save(result *core.RunResult) error

	// Get returns a clone of the recorded result for runID.
	Get(runID string) (*core.RunResult, error)

	// List returns the run ids of every recorded result.
	List() ([]string, error)

	// Delete removes the recorded result for runID; removing an unknown id is
	// not an error.
	Delete(runID string) error
}

// InMemoryStore is a volatile Store keeping results in a process-local map.
// Best suited for tests, demos and single-process deployments; durable
// backends implement the same interface.
type InMemoryStore struct {
	mu      sync.RWMutex
	results map[string]*core.RunResult
}

// NewInMemoryStore constructs an empty in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{results: make(map[string]*core.RunResult)}
}

// Save implements Store.
func (s *InMemoryStore) Save(result *core.RunResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("run result must carry a run id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[result.RunID] = result.Clone()

	return nil
}

// Get implements Store.
func (s *InMemoryStore) Get(runID string) (*core.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[runID]
	if !ok {
		return nil, fmt.Errorf("no recorded run %q", runID)
	}

	return result.Clone(), nil
}

// List implements Store.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}

	return ids, nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.results, runID)

	return nil
}
