// Package bloom provides a probabilistic seen-set for identity keys.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter used to answer "definitely not seen" for
// identity keys before a precise lookup is needed.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// Reset forgets every key while keeping the filter's size.
func (f *Filter) Reset() {
	f.f.ClearAll()
}

