package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// CachedProvider wraps a Provider with the request policy of a platform
// location service: a per-request timeout, reuse of a recent fix up to
// Options.MaxAge, and a single upstream request for concurrent callers.
// Failures are never cached.
type CachedProvider struct {
	upstream Provider
	fixes    *expirable.LRU[string, Position]
	group    singleflight.Group
	now      func() time.Time
}

// NewCachedProvider keeps fixes for at most retention. Requests asking for
// an older fix than that still get a fresh one.
func NewCachedProvider(upstream Provider, retention time.Duration) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		fixes:    expirable.NewLRU[string, Position](2, nil, retention),
		now:      time.Now,
	}
}

func (c *CachedProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	key := cacheKey(opts)

	if opts.MaxAge > 0 {
		if pos, ok := c.fixes.Get(key); ok && pos.Age(c.now()) <= opts.MaxAge {
			slog.Debug("location: using cached fix", "age", pos.Age(c.now()))
			return pos, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, opts.Timeout)
			defer cancel()
		}

		pos, err := c.upstream.CurrentPosition(callCtx, opts)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = ErrTimeout
			}
			return Position{}, err
		}
		c.fixes.Add(key, pos)
		return pos, nil
	})

	select {
	case <-ctx.Done():
		return Position{}, deadlineErr(ctx)
	case res := <-ch:
		if res.Err != nil {
			slog.Warn("location: request failed", "error", res.Err)
			return Position{}, res.Err
		}
		return res.Val.(Position), nil
	}
}

// Forget drops every cached fix.
func (c *CachedProvider) Forget() {
	c.fixes.Purge()
}

func cacheKey(opts Options) string {
	if opts.HighAccuracy {
		return "high"
	}
	return "coarse"
}
