package watch

import (
	"sync"

	"finsec/internal/digest"
)

// HashStore maps resource identifiers (file paths or source names) to their
// last accepted content digest. It is safe for concurrent use.
type HashStore struct {
	mu      sync.RWMutex
	digests map[string]string
}

// NewHashStore creates an empty store.
func NewHashStore() *HashStore {
	return &HashStore{digests: make(map[string]string)}
}

// Get returns the recorded digest for id.
func (s *HashStore) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.digests[id]
	return d, ok
}

// Set records d as the baseline for id.
func (s *HashStore) Set(id, d string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests[id] = d
}

// Snapshot returns a copy of every recorded digest.
func (s *HashStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.digests))
	for id, d := range s.digests {
		out[id] = d
	}
	return out
}

// DigestBytes returns the content digest of data.
func DigestBytes(data []byte) string {
	return digest.Bytes(data)
}

// DigestFile returns the content digest of the file at path.
func DigestFile(path string) (string, error) {
	return digest.File(path)
}
