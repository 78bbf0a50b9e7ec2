package harvest

import (
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/bloom"
)

// memberSet holds harvested members keyed by identity, in the order they
// were first seen. A Bloom filter answers most membership tests for keys
// that were never inserted without touching the map.
type memberSet struct {
	order []roster.Member
	index map[string]struct{}
	seen  *bloom.Filter
}

func newMemberSet(expected int) *memberSet {
	return &memberSet{
		index: make(map[string]struct{}),
		seen:  bloom.NewFilter(uint(max(expected, 1)), 0.01),
	}
}

func (s *memberSet) has(key string) bool {
	if !s.seen.Test(key) {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// add inserts m unless its key is already present. First sighting wins.
func (s *memberSet) add(m roster.Member) bool {
	if s.has(m.Key) {
		return false
	}
	s.index[m.Key] = struct{}{}
	s.seen.Add(m.Key)
	s.order = append(s.order, m)
	return true
}

func (s *memberSet) len() int {
	return len(s.order)
}

func (s *memberSet) list() []roster.Member {
	out := make([]roster.Member, len(s.order))
	copy(out, s.order)
	return out
}

func (s *memberSet) reset() {
	s.order = nil
	clear(s.index)
	s.seen.Reset()
}
