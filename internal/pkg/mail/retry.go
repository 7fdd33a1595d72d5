package mail

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryConfig bounds the retries done by Retrying.
type RetryConfig struct {
	// MaxRetries excludes the first attempt.
	MaxRetries uint64
	Base       time.Duration
	Cap        time.Duration
}

// Retrying retries failed sends with capped exponential backoff and jitter.
// Validation errors are returned at once.
type Retrying struct {
	next Mail
	cfg  RetryConfig
}

// NewRetrying wraps next.
func NewRetrying(next Mail, cfg RetryConfig) *Retrying {
	if cfg.Base <= 0 {
		cfg.Base = 200 * time.Millisecond
	}
	if cfg.Cap <= 0 {
		cfg.Cap = 5 * time.Second
	}
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) backoff() retry.Backoff {
	b := retry.NewExponential(r.cfg.Base)
	b = retry.WithJitterPercent(10, b)
	b = retry.WithCappedDuration(r.cfg.Cap, b)
	return retry.WithMaxRetries(r.cfg.MaxRetries, b)
}

// Send delivers msg, retrying transient failures.
func (r *Retrying) Send(ctx context.Context, msg Message) error {
	attempt := 0
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		err := r.next.Send(ctx, msg)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNoRecipients), errors.Is(err, ErrNoSender),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		}

		slog.WarnContext(ctx, "mail send failed", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

// Close closes the wrapped Mail.
func (r *Retrying) Close() error { return r.next.Close() }
