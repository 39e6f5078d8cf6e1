package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"github.com/popov-vn/ai-agent/internal/config"
	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// Options tune RetryingClient.
type Options struct {
	// MaxAttempts is the total number of tries per Complete call.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; it doubles after that.
	BaseDelay      time.Duration
	RequestTimeout time.Duration
	// MaxConcurrent bounds in-flight provider calls across all callers.
	MaxConcurrent int
	// BreakerMaxFailures opens the circuit after that many consecutive
	// failed attempts. Zero disables the breaker.
	BreakerMaxFailures int
}

// OptionsFromConfig maps the llm config section onto Options.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		MaxAttempts:        cfg.MaxRetries,
		BaseDelay:          cfg.RetryDelay(),
		RequestTimeout:     cfg.RequestTimeout(),
		MaxConcurrent:      cfg.MaxConcurrentRequests,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
	}
}

// RetryingClient wraps a Provider with an admission gate, a per-attempt
// timeout, exponential backoff and an optional circuit breaker.
type RetryingClient struct {
	provider Provider
	opts     Options
	gate     *semaphore.Weighted
	breaker  *gobreaker.CircuitBreaker
	log      *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewClient builds a RetryingClient. Out-of-range options are clamped to 1.
func NewClient(provider Provider, opts Options, logger *slog.Logger) *RetryingClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Duration(config.DefaultRequestTimeoutSeconds) * time.Second
	}

	log := logger.With("component", "llm_client", "provider", provider.Name())

	c := &RetryingClient{
		provider: provider,
		opts:     opts,
		gate:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		log:      log,
		sleep:    sleepContext,
	}

	if opts.BreakerMaxFailures > 0 {
		maxFailures := uint32(opts.BreakerMaxFailures)
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        provider.Name(),
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// Backoff returns the wait after the given zero-based failed attempt: base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<attempt)
}

// Complete tries the provider up to MaxAttempts times. Any failure is
// retryable; only cancellation of ctx stops the loop early. Exhaustion
// yields a CompletionError.
func (c *RetryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.opts.MaxAttempts; attempt++ {
		c.log.DebugContext(ctx, "Sending completion request", "attempt", attempt+1, "max_attempts", c.opts.MaxAttempts)

		text, err := c.attempt(ctx, prompt)
		if err == nil {
			c.log.DebugContext(ctx, "Received completion", "attempt", attempt+1, "length", len(text))
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			c.log.WarnContext(ctx, "Completion cancelled", "attempt", attempt+1, "error", ctx.Err())
			break
		}

		c.log.WarnContext(ctx, "Completion attempt failed", "attempt", attempt+1, "error", err)

		if attempt < c.opts.MaxAttempts-1 {
			delay := Backoff(c.opts.BaseDelay, attempt)
			c.log.InfoContext(ctx, "Retrying completion after backoff", "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	c.log.ErrorContext(ctx, "Completion failed after all attempts", "max_attempts", c.opts.MaxAttempts, "error", lastErr)
	return "", errs.NewCompletionError(
		fmt.Sprintf("%s completion failed after %d attempts", c.provider.Name(), c.opts.MaxAttempts), lastErr)
}

func (c *RetryingClient) attempt(ctx context.Context, prompt string) (string, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for admission: %w", err)
	}
	defer c.gate.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	call := func() (interface{}, error) {
		text, err := c.provider.Generate(attemptCtx, prompt)
		if err != nil {
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("request timed out after %s: %w", c.opts.RequestTimeout, err)
			}
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyResponse
		}
		return text, nil
	}

	var (
		out interface{}
		err error
	)
	if c.breaker != nil {
		out, err = c.breaker.Execute(call)
	} else {
		out, err = call()
	}
	if err != nil {
		return "", err
	}

	return out.(string), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
