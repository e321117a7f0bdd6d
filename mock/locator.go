package mock

import (
	"context"

	"github.com/mrtoronto/patscan"
)

var _ patscan.Locator = (*Locator)(nil)

// Locator is a mock implementation of patscan.Locator.
type Locator struct {
	LocateFn func(ctx context.Context, keyword string) ([]patscan.Reference, int, error)
}

func (l *Locator) Locate(ctx context.Context, keyword string) ([]patscan.Reference, int, error) {
	return l.LocateFn(ctx, keyword)
}
