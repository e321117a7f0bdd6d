package mock

import (
	"context"

	"github.com/mrtoronto/patscan"
)

// Compile-time interface verification.
var (
	_ patscan.Renderer = (*Renderer)(nil)
	_ patscan.Session  = (*Session)(nil)
)

// Renderer is a mock implementation of patscan.Renderer.
type Renderer struct {
	OpenFn func(ctx context.Context) (patscan.Session, error)
}

func (r *Renderer) Open(ctx context.Context) (patscan.Session, error) {
	return r.OpenFn(ctx)
}

// Session is a mock implementation of patscan.Session.
type Session struct {
	NavigateFn func(ctx context.Context, url string) error
	SnapshotFn func(ctx context.Context) (*patscan.RawDocument, error)
	CloseFn    func() error
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.NavigateFn(ctx, url)
}

func (s *Session) Snapshot(ctx context.Context) (*patscan.RawDocument, error) {
	return s.SnapshotFn(ctx)
}

func (s *Session) Close() error {
	return s.CloseFn()
}
