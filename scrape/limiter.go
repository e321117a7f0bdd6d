package scrape

import (
	"context"
	"net/url"
	"sync"

	"github.com/mrtoronto/patscan"
	"golang.org/x/time/rate"
)

// Limiter spaces out navigations.
type Limiter interface {
	// Wait blocks until a navigation to rawURL may start, or ctx is done.
	Wait(ctx context.Context, rawURL string) error
}

var _ Limiter = (*HostLimiter)(nil)

// HostLimiter keeps one token bucket per host name, so a slow search site
// does not delay pages served from another. Ports are ignored.
type HostLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewHostLimiter returns a HostLimiter starting at most rps navigations per
// second on each host. Navigations are never bunched.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limit:   rate.Limit(rps),
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host of rawURL has a free slot. A URL without a
// host is EINVALID.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return patscan.Errorf(patscan.EINVALID, "no host in %q", rawURL)
	}
	return l.bucket(u.Hostname()).Wait(ctx)
}

func (l *HostLimiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(l.limit, 1)
		l.buckets[host] = b
	}
	return b
}
