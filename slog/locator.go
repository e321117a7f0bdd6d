// Package slog provides logging decorators for patscan services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mrtoronto/patscan"
)

// Ensure LoggingLocator implements patscan.Locator.
var _ patscan.Locator = (*LoggingLocator)(nil)

// LoggingLocator wraps a Locator with logging.
type LoggingLocator struct {
	next   patscan.Locator
	logger *slog.Logger
}

// NewLoggingLocator creates a new LoggingLocator.
func NewLoggingLocator(next patscan.Locator, logger *slog.Logger) *LoggingLocator {
	return &LoggingLocator{next: next, logger: logger}
}

// Locate delegates to the wrapped locator and logs the operation.
func (l *LoggingLocator) Locate(ctx context.Context, keyword string) (refs []patscan.Reference, total int, err error) {
	defer func(begin time.Time) {
		l.logger.Info("discovery",
			"keyword", keyword,
			"total", total,
			"count", len(refs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Locate(ctx, keyword)
}
