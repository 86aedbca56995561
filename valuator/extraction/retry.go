package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy controls retry behavior for extraction calls. Auth and bad-request
// failures never retry; rate limits wait at least RateLimitFloor per attempt
// and surface as ErrQuotaExceeded once retries run out.
type Policy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	Multiplier     float64
	RateLimitFloor time.Duration

	// Sleep is swapped out in tests. Nil means a real context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      4 * time.Second,
		Multiplier:     1.5,
		RateLimitFloor: 8 * time.Second,
	}
}

// Do runs op with backoff: one initial attempt plus up to MaxRetries more.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.BaseDelay
	for attempt := 0; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrBadRequest) {
			return "", err
		}

		rateLimited := errors.Is(err, ErrRateLimited) || errors.Is(err, ErrQuotaExceeded)
		if attempt >= p.MaxRetries {
			if errors.Is(err, ErrQuotaExceeded) {
				return "", err
			}
			if rateLimited {
				return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
			}
			return "", err
		}

		wait := delay
		if rateLimited && wait < p.RateLimitFloor {
			wait = p.RateLimitFloor
		}
		slog.Warn("Extraction call failed, retrying",
			slog.String("type", "ai"),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Bool("rate_limited", rateLimited),
			slog.Any("error", err))

		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
