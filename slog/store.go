package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mrtoronto/patscan"
)

// Ensure LoggingStore implements patscan.DatasetStore.
var _ patscan.DatasetStore = (*LoggingStore)(nil)

// LoggingStore wraps a DatasetStore with logging.
type LoggingStore struct {
	next   patscan.DatasetStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next patscan.DatasetStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the operation.
func (s *LoggingStore) Load(ctx context.Context) (d patscan.Dataset, err error) {
	defer func(begin time.Time) {
		s.logger.Info("dataset load",
			"count", len(d),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Save delegates to the wrapped store and logs the operation.
func (s *LoggingStore) Save(ctx context.Context, d patscan.Dataset) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("dataset save",
			"count", len(d),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, d)
}
