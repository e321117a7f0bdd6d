package patscan

import "context"

// Renderer opens browser-like sessions that render patent pages.
type Renderer interface {
	// Open starts a new session. A non-nil Session may be returned together
	// with an error when startup failed halfway; callers must Close it.
	Open(ctx context.Context) (Session, error)
}

// Session renders one page at a time and owns the resources behind it.
type Session interface {
	// Navigate loads the page at url. Returns EUNAVAILABLE if the page
	// cannot be rendered.
	Navigate(ctx context.Context, url string) error

	// Snapshot returns the content of the page loaded by the last
	// successful Navigate.
	Snapshot(ctx context.Context) (*RawDocument, error)

	// Close releases the session. Must be called exactly once.
	Close() error
}
