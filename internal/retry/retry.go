// Package retry runs reads with a fixed number of attempts and a constant
// pause in between. There is no jitter and no circuit breaking.
package retry

import (
	"context"
	"log/slog"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default is three attempts one second apart.
var Default = Policy{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, the attempts are spent, or ctx is done.
// The error of the last attempt is returned unwrapped.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := goretry.WithMaxRetries(uint64(attempts-1), goretry.NewConstant(p.delay()))

	attempt := 0
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			if attempt < attempts {
				slog.Warn("retrying after failure", "action", op, "attempt", attempt, "error", err)
			}
			return goretry.RetryableError(err)
		}
		return nil
	})
}

func (p Policy) delay() time.Duration {
	if p.Delay <= 0 {
		// NewConstant panics on a non-positive duration.
		return time.Nanosecond
	}
	return p.Delay
}
