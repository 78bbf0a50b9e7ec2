package harvest

import (
	"time"

	"github.com/fwojciec/roster"
)

type memoEntry struct {
	hash    uint64
	record  *roster.RawRecord
	expires time.Time
}

// nodeMemo remembers the record extracted from a rendered node. An entry
// only matches while the node's markup hash is unchanged, so a recycled
// node showing a different entry is always extracted again.
type nodeMemo struct {
	ttl     time.Duration
	entries map[string]memoEntry
}

func newNodeMemo(ttl time.Duration) *nodeMemo {
	return &nodeMemo{ttl: ttl, entries: make(map[string]memoEntry)}
}

func (m *nodeMemo) get(id string, hash uint64, now time.Time) (*roster.RawRecord, bool) {
	e, ok := m.entries[id]
	if !ok || e.hash != hash || !now.Before(e.expires) {
		return nil, false
	}
	return e.record, true
}

func (m *nodeMemo) put(id string, hash uint64, rec *roster.RawRecord, now time.Time) {
	if m.ttl <= 0 {
		return
	}
	m.entries[id] = memoEntry{hash: hash, record: rec, expires: now.Add(m.ttl)}
}

// prune drops expired entries.
func (m *nodeMemo) prune(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
}

func (m *nodeMemo) clear() {
	clear(m.entries)
}
