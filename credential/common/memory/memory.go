// Package memory provides resolution-memory stores: sets of identifiers
// known to have diverged from their default authority document and therefore
// requiring authoritative lookups. Marking is idempotent and, within a
// session, one-directional.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"
)

// Store is the adapter the resolution orchestrator writes divergence marks
// to. Implementations must make Set idempotent.
type Store interface {
	// Has reports whether the identifier requires authoritative lookup.
	Has(did string) bool

	// Set marks the identifier as requiring authoritative lookup.
	Set(did string)
}

type mapStore struct {
	mu     sync.Mutex
	marked map[string]struct{}
}

// NewMapStore creates a process-lifetime store.
func NewMapStore() Store {
	return &mapStore{marked: make(map[string]struct{})}
}

func (s *mapStore) Has(did string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.marked[normalizeKey(did)]

	return ok
}

func (s *mapStore) Set(did string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marked[normalizeKey(did)] = struct{}{}
}

type cacheStore struct {
	cache gcache.Cache
	ttl   time.Duration
}

// NewCacheStore creates a session store whose marks expire after the given
// TTL, so identifiers fixed back to their default eventually regain the
// optimistic path.
func NewCacheStore(size int, ttl time.Duration) Store {
	return &cacheStore{
		cache: gcache.New(size).LRU().Build(),
		ttl:   ttl,
	}
}

func (s *cacheStore) Has(did string) bool {
	_, err := s.cache.Get(normalizeKey(did))

	return err == nil
}

func (s *cacheStore) Set(did string) {
	_ = s.cache.SetWithExpire(normalizeKey(did), struct{}{}, s.ttl)
}

func normalizeKey(did string) string {
	return strings.ToLower(did)
}
