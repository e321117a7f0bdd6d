// Package bloom detects repeated record keys with a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers the keys it has seen. It may report a new key as seen
// at the configured false positive rate, never the reverse.
// Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n keys at the given false positive
// rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// TestAndAdd records key and reports whether it was seen before.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}
