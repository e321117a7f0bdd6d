package mock

import "github.com/mrtoronto/patscan"

var _ patscan.Decomposer = (*Decomposer)(nil)

// Decomposer is a mock implementation of patscan.Decomposer.
type Decomposer struct {
	DecomposeFn func(html string) (*patscan.RawDocument, error)
}

func (d *Decomposer) Decompose(html string) (*patscan.RawDocument, error) {
	return d.DecomposeFn(html)
}
