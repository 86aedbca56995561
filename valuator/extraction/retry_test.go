package extraction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func testPolicy(rec *sleepRecorder) Policy {
	p := DefaultPolicy()
	p.Sleep = rec.sleep
	return p
}

func TestPolicy_RateLimitExhaustion(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0

	_, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: try later", ErrRateLimited)
	})

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
	if len(rec.waits) != 3 {
		t.Fatalf("sleeps = %d, want 3", len(rec.waits))
	}
	for i, wait := range rec.waits {
		if wait < 8*time.Second {
			t.Errorf("wait %d = %v, rate-limited waits must be at least 8s", i, wait)
		}
	}
	// Backoff exceeds the floor on the third retry (4s * 1.5 * 1.5).
	if rec.waits[2] != 9*time.Second {
		t.Errorf("third wait = %v, want 9s", rec.waits[2])
	}
}

func TestPolicy_TransientBackoff(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0

	got, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Do() = %q, want ok", got)
	}
	wantWaits := []time.Duration{4 * time.Second, 6 * time.Second}
	if len(rec.waits) != len(wantWaits) {
		t.Fatalf("sleeps = %v, want %v", rec.waits, wantWaits)
	}
	for i := range wantWaits {
		if rec.waits[i] != wantWaits[i] {
			t.Errorf("wait %d = %v, want %v", i, rec.waits[i], wantWaits[i])
		}
	}
}

func TestPolicy_NoRetryOnTerminalErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "auth", err: ErrAuthFailed},
		{name: "bad request", err: ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sleepRecorder{}
			calls := 0
			_, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
				calls++
				return "", fmt.Errorf("wrapped: %w", tt.err)
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if len(rec.waits) != 0 {
				t.Errorf("sleeps = %v, want none", rec.waits)
			}
		})
	}
}

func TestPolicy_RateLimitWithQuotaBodyStillRetries(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	apiErr := classifyStatus(429, []byte("You exceeded your current quota, please check your plan"))
	if !errors.Is(apiErr, ErrRateLimited) {
		t.Fatalf("classifyStatus(429) = %v, want ErrRateLimited", apiErr)
	}

	_, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", apiErr
	})

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded after exhaustion", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
	for i, wait := range rec.waits {
		if wait < 8*time.Second {
			t.Errorf("wait %d = %v, rate-limited waits must be at least 8s", i, wait)
		}
	}
}

func TestPolicy_QuotaErrorRetriesAndRecovers(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0

	got, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("%w: insufficient balance", ErrQuotaExceeded)
		}
		return "ok", nil
	})

	if err != nil || got != "ok" {
		t.Fatalf("Do() = %q, %v", got, err)
	}
	if len(rec.waits) != 1 || rec.waits[0] < 8*time.Second {
		t.Errorf("sleeps = %v, want one wait of at least 8s", rec.waits)
	}
}

func TestPolicy_TransientExhaustionKeepsError(t *testing.T) {
	rec := &sleepRecorder{}
	wantErr := errors.New("upstream down")

	_, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		return "", wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if errors.Is(err, ErrQuotaExceeded) {
		t.Error("transient exhaustion must not become quota exceeded")
	}
}

func TestPolicy_FirstTrySuccess(t *testing.T) {
	rec := &sleepRecorder{}
	got, err := testPolicy(rec).Do(context.Background(), func(context.Context) (string, error) {
		return "content", nil
	})
	if err != nil || got != "content" {
		t.Fatalf("Do() = %q, %v", got, err)
	}
	if len(rec.waits) != 0 {
		t.Errorf("sleeps = %v, want none", rec.waits)
	}
}
