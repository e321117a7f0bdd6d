package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mrtoronto/patscan"
)

// Ensure LoggingRenderer implements patscan.Renderer.
var _ patscan.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer so that its sessions log every
// navigation and snapshot at debug level.
type LoggingRenderer struct {
	next   patscan.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next patscan.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Open delegates to the wrapped renderer and logs the session start.
// A partial session returned with an error is wrapped as well so that
// closing it is still logged.
func (r *LoggingRenderer) Open(ctx context.Context) (s patscan.Session, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("session open",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	s, err = r.next.Open(ctx)
	if s == nil {
		return nil, err
	}
	return &loggingSession{next: s, logger: r.logger}, err
}

type loggingSession struct {
	next   patscan.Session
	logger *slog.Logger
	url    string
}

func (s *loggingSession) Navigate(ctx context.Context, url string) (err error) {
	s.url = url
	defer func(begin time.Time) {
		s.logger.Debug("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Navigate(ctx, url)
}

func (s *loggingSession) Snapshot(ctx context.Context) (doc *patscan.RawDocument, err error) {
	defer func(begin time.Time) {
		var bytes, blocks int
		if doc != nil {
			bytes, blocks = len(doc.Content), len(doc.Blocks)
		}
		s.logger.Debug("snapshot",
			"url", s.url,
			"bytes", bytes,
			"blocks", blocks,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Snapshot(ctx)
}

func (s *loggingSession) Close() (err error) {
	defer func() {
		s.logger.Debug("session close", "err", err)
	}()
	return s.next.Close()
}
