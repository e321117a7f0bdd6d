package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/mock"
	"github.com/mrtoronto/patscan/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Retrieval Adapter
// Every reference is rendered in its own session, retried on failure and
// released whatever happens.

func TestRetriever_Retrieve(t *testing.T) {
	t.Parallel()

	t.Run("renders page and releases session", func(t *testing.T) {
		t.Parallel()

		// Given a site serving one page
		s := newSite()
		s.add(ref(1), "10,000,001")

		// When I retrieve it
		r, err := fastRetriever(s.renderer()).Retrieve(context.Background(), ref(1))

		// Then the document is returned after one attempt
		require.NoError(t, err)
		require.True(t, r.OK())
		assert.Equal(t, 1, r.Attempts)
		assert.Equal(t, "United States Patent\n10,000,001", r.Document.Blocks[1])

		// And the session was released
		assert.Equal(t, 1, s.opened)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("retries failed renders in the same session", func(t *testing.T) {
		t.Parallel()

		s := newSite()
		s.add(ref(1), "10,000,001")
		s.failures[ref(1).URL] = 2

		r, err := fastRetriever(s.renderer()).Retrieve(context.Background(), ref(1))

		require.NoError(t, err)
		assert.True(t, r.OK())
		assert.Equal(t, 3, r.Attempts)
		assert.Len(t, s.fetched(), 3)
		assert.Equal(t, 1, s.opened)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("reports render failure after three attempts", func(t *testing.T) {
		t.Parallel()

		// Given a page that never renders
		s := newSite()

		// When I retrieve it
		r, err := fastRetriever(s.renderer()).Retrieve(context.Background(), ref(1))

		// Then the failure is reported in the outcome, not as an error
		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Nil(t, r.Document)
		assert.Equal(t, 3, r.Attempts)
		assert.Equal(t, patscan.EUNAVAILABLE, patscan.ErrorCode(r.Err))

		// And the session was still released
		assert.Equal(t, 1, s.closed)
	})

	t.Run("counts snapshot failure as failed attempt", func(t *testing.T) {
		t.Parallel()

		snapshots := 0
		closed := 0
		renderer := &mock.Renderer{
			OpenFn: func(context.Context) (patscan.Session, error) {
				return &mock.Session{
					NavigateFn: func(context.Context, string) error { return nil },
					SnapshotFn: func(context.Context) (*patscan.RawDocument, error) {
						snapshots++
						if snapshots == 1 {
							return nil, errors.New("page closed")
						}
						return &patscan.RawDocument{}, nil
					},
					CloseFn: func() error { closed++; return nil },
				}, nil
			},
		}

		r, err := fastRetriever(renderer).Retrieve(context.Background(), ref(1))

		require.NoError(t, err)
		assert.True(t, r.OK())
		assert.Equal(t, 2, r.Attempts)
		assert.Equal(t, 1, closed)
	})

	t.Run("restarts session once after failed start", func(t *testing.T) {
		t.Parallel()

		// Given a renderer whose first start fails halfway
		s := newSite()
		s.add(ref(1), "10,000,001")
		halfClosed := false
		opens := 0
		renderer := &mock.Renderer{
			OpenFn: func(ctx context.Context) (patscan.Session, error) {
				opens++
				if opens == 1 {
					return &mock.Session{CloseFn: func() error { halfClosed = true; return nil }}, errors.New("session not created")
				}
				return s.renderer().Open(ctx)
			},
		}

		// When I retrieve a page
		r, err := fastRetriever(renderer).Retrieve(context.Background(), ref(1))

		// Then the half-started session is closed and the retry succeeds
		require.NoError(t, err)
		assert.True(t, r.OK())
		assert.True(t, halfClosed)
		assert.Equal(t, 2, opens)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("fails when session cannot start twice", func(t *testing.T) {
		t.Parallel()

		opens := 0
		renderer := &mock.Renderer{
			OpenFn: func(context.Context) (patscan.Session, error) {
				opens++
				return nil, errors.New("browser not found")
			},
		}

		_, err := fastRetriever(renderer).Retrieve(context.Background(), ref(1))

		require.Error(t, err)
		assert.Equal(t, patscan.EINTERNAL, patscan.ErrorCode(err))
		assert.Equal(t, 2, opens)
	})

	t.Run("returns context error and releases session", func(t *testing.T) {
		t.Parallel()

		s := newSite()
		ctx, cancel := context.WithCancel(context.Background())
		renderer := &mock.Renderer{
			OpenFn: func(ctx context.Context) (patscan.Session, error) {
				sess := s.session()
				navigate := sess.NavigateFn
				sess.NavigateFn = func(ctx context.Context, url string) error {
					cancel()
					return navigate(ctx, url)
				}
				return sess, nil
			},
		}

		_, err := fastRetriever(renderer).Retrieve(ctx, ref(1))

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("waits for page to settle", func(t *testing.T) {
		t.Parallel()

		s := newSite()
		s.add(ref(1), "10,000,001")
		retriever := scrape.NewRetriever(s.renderer(), scrape.WithSettle(30*time.Millisecond))

		start := time.Now()
		r, err := retriever.Retrieve(context.Background(), ref(1))

		require.NoError(t, err)
		assert.True(t, r.OK())
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("paces every navigation", func(t *testing.T) {
		t.Parallel()

		s := newSite()
		s.add(ref(1), "10,000,001")
		var urls []string
		limiter := limiterFunc(func(_ context.Context, rawURL string) error {
			urls = append(urls, rawURL)
			return nil
		})
		retriever := scrape.NewRetriever(s.renderer(), scrape.WithSettle(0), scrape.WithLimiter(limiter))

		_, err := retriever.Retrieve(context.Background(), ref(1))

		require.NoError(t, err)
		assert.Equal(t, []string{ref(1).URL}, urls)
	})

	t.Run("refused pacing fails the attempt", func(t *testing.T) {
		t.Parallel()

		s := newSite()
		s.add(ref(1), "10,000,001")
		limiter := limiterFunc(func(_ context.Context, rawURL string) error {
			return patscan.Errorf(patscan.EINVALID, "no host in %q", rawURL)
		})
		retriever := scrape.NewRetriever(s.renderer(),
			scrape.WithSettle(0),
			scrape.WithRetryPolicy(scrape.RetryPolicy{}),
			scrape.WithLimiter(limiter),
		)

		r, err := retriever.Retrieve(context.Background(), ref(1))

		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Equal(t, 1, r.Attempts)
		assert.Empty(t, s.fetched())
	})
}
