package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type fileStore struct {
	mu     sync.Mutex
	path   string
	marked map[string]struct{}
}

// NewFileStore creates a durable cross-session store backed by a JSON file.
// Existing marks are loaded on open; every new mark is flushed immediately.
func NewFileStore(path string) (Store, error) {
	s := &fileStore{path: path, marked: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read resolution memory file: %w", err)
		}

		return s, nil
	}

	var dids []string
	if err := json.Unmarshal(data, &dids); err != nil {
		return nil, fmt.Errorf("failed to parse resolution memory file: %w", err)
	}

	for _, did := range dids {
		s.marked[normalizeKey(did)] = struct{}{}
	}

	return s, nil
}

func (s *fileStore) Has(did string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.marked[normalizeKey(did)]

	return ok
}

func (s *fileStore) Set(did string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeKey(did)
	if _, ok := s.marked[key]; ok {
		return
	}

	s.marked[key] = struct{}{}

	dids := maps.Keys(s.marked)
	slices.Sort(dids)

	data, err := json.Marshal(dids)
	if err != nil {
		return
	}

	// Best effort: an unwritable file degrades to session behavior.
	_ = os.WriteFile(s.path, data, 0o600)
}
