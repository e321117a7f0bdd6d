package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/mrtoronto/patscan"
)

// DefaultSettle is the wait between a completed navigation and reading the
// page, giving scripts on the page time to finish rendering.
const DefaultSettle = 5 * time.Second

// Retrieval is the outcome of retrieving one reference.
type Retrieval struct {
	Document *patscan.RawDocument
	Attempts int

	// Err is set when every attempt failed. It has code EUNAVAILABLE.
	Err error
}

// OK reports whether the document was retrieved.
func (r Retrieval) OK() bool {
	return r.Err == nil && r.Document != nil
}

// Retriever renders patent pages through short-lived sessions.
// Every reference gets its own session, which is closed before Retrieve
// returns. Retriever is safe for concurrent use if its Renderer is.
type Retriever struct {
	renderer patscan.Renderer
	policy   RetryPolicy
	settle   time.Duration
	limiter  Limiter
	logger   *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithRetryPolicy sets the retry policy for failed renders.
// Defaults to DefaultRetryPolicy().
func WithRetryPolicy(p RetryPolicy) RetrieverOption {
	return func(r *Retriever) {
		r.policy = p
	}
}

// WithSettle sets the wait between navigation and snapshot.
// Defaults to DefaultSettle.
func WithSettle(d time.Duration) RetrieverOption {
	return func(r *Retriever) {
		r.settle = d
	}
}

// WithLimiter paces navigations through l.
func WithLimiter(l Limiter) RetrieverOption {
	return func(r *Retriever) {
		r.limiter = l
	}
}

// WithLogger sets the logger for retries and session failures.
func WithLogger(l *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		r.logger = l
	}
}

// NewRetriever creates a Retriever opening sessions from renderer.
func NewRetriever(renderer patscan.Renderer, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		renderer: renderer,
		policy:   DefaultRetryPolicy(),
		settle:   DefaultSettle,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve renders the page of ref. A page that cannot be rendered within
// the retry policy is reported through Retrieval.Err. The returned error is
// reserved for conditions that must stop the whole run: a session that
// cannot be started twice in a row, or ctx being done.
func (r *Retriever) Retrieve(ctx context.Context, ref patscan.Reference) (Retrieval, error) {
	var out Retrieval
	err := r.withSession(ctx, func(s patscan.Session) error {
		onRetry := func(attempt int, err error, wait time.Duration) {
			r.logger.Info("retrying render",
				"url", ref.URL,
				"attempt", attempt,
				"wait", wait,
				"err", err,
			)
		}
		doc, attempts, err := Retry(ctx, r.policy, func(ctx context.Context) (*patscan.RawDocument, error) {
			return r.render(ctx, s, ref.URL)
		}, onRetry)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		out = Retrieval{Document: doc, Attempts: attempts}
		if err != nil {
			out.Document = nil
			out.Err = patscan.Errorf(patscan.EUNAVAILABLE, "render unavailable for %s after %d attempts: %v", ref.URL, attempts, err)
		}
		return nil
	})
	if err != nil {
		return Retrieval{}, err
	}
	return out, nil
}

func (r *Retriever) render(ctx context.Context, s patscan.Session, rawURL string) (*patscan.RawDocument, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}
	if err := s.Navigate(ctx, rawURL); err != nil {
		return nil, err
	}
	if err := sleep(ctx, r.settle); err != nil {
		return nil, err
	}
	return s.Snapshot(ctx)
}

// withSession opens a session, runs fn and closes the session once,
// whatever fn returns.
func (r *Retriever) withSession(ctx context.Context, fn func(patscan.Session) error) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			r.logger.Warn("closing session", "err", err)
		}
	}()
	return fn(s)
}

// open starts a session, retrying once after discarding a failed attempt.
func (r *Retriever) open(ctx context.Context) (patscan.Session, error) {
	s, err := r.renderer.Open(ctx)
	if err == nil {
		return s, nil
	}
	r.logger.Warn("session start failed, retrying", "err", err)
	discard(s)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err = r.renderer.Open(ctx)
	if err != nil {
		discard(s)
		return nil, patscan.Errorf(patscan.EINTERNAL, "session start failed twice: %v", err)
	}
	return s, nil
}

// discard closes a half-started session.
func discard(s patscan.Session) {
	if s != nil {
		_ = s.Close()
	}
}
