package id

import (
	"sync"

	"github.com/google/uuid"
)

// UUIDGenerator issues random (v4) UUID strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Sequence returns fixed IDs in order and then falls back to UUIDs. Useful for
// seeding demo data with readable identifiers.
type Sequence struct {
	mu   sync.Mutex
	ids  []string
	next int
}

func NewSequence(ids ...string) *Sequence { return &Sequence{ids: ids} }

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next < len(s.ids) {
		id := s.ids[s.next]
		s.next++
		return id
	}
	return uuid.NewString()
}
