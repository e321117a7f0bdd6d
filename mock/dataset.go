package mock

import (
	"context"

	"github.com/mrtoronto/patscan"
)

// Compile-time interface verification.
var (
	_ patscan.DatasetStore = (*DatasetStore)(nil)
	_ patscan.DumpWriter   = (*DumpWriter)(nil)
)

// DatasetStore is a mock implementation of patscan.DatasetStore.
type DatasetStore struct {
	LoadFn func(ctx context.Context) (patscan.Dataset, error)
	SaveFn func(ctx context.Context, d patscan.Dataset) error
}

func (s *DatasetStore) Load(ctx context.Context) (patscan.Dataset, error) {
	return s.LoadFn(ctx)
}

func (s *DatasetStore) Save(ctx context.Context, d patscan.Dataset) error {
	return s.SaveFn(ctx, d)
}

// DumpWriter is a mock implementation of patscan.DumpWriter.
type DumpWriter struct {
	WriteDumpFn func(ctx context.Context, key string, content string) error
}

func (w *DumpWriter) WriteDump(ctx context.Context, key string, content string) error {
	return w.WriteDumpFn(ctx, key, content)
}
