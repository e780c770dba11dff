package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname so one careers site or one README
// full of links to the same host never gets hammered.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

// WaitURL blocks until a request to raw's host is allowed. A nil limiter never blocks.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return ctx.Err()
	}
	return hl.limiterFor(HostKey(raw)).Wait(ctx)
}

// HostKey is the lowercased host of raw, or "_" when it has none.
func HostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "_"
	}
	return strings.ToLower(u.Host)
}
