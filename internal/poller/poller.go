// Package poller repeatedly checks asynchronous operations until they reach a
// terminal state.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultBackoff  = 15 * time.Second
)

// Option configures a Poller.
type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBackoff sets the wait applied after a failed status check.
func WithBackoff(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.backoff = d
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(p *Poller) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithLogger(logger *infra.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress registers a callback invoked with every non-terminal result.
func WithProgress(fn func(domain.GenerationResult)) Option {
	return func(p *Poller) {
		p.progress = fn
	}
}

// Poller drives one StatusChecker. It holds no per-operation state and can
// poll several handles concurrently.
type Poller struct {
	checker  domain.StatusChecker
	interval time.Duration
	backoff  time.Duration
	clock    clockwork.Clock
	logger   *infra.Logger
	progress func(domain.GenerationResult)
}

func New(checker domain.StatusChecker, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		interval: DefaultInterval,
		backoff:  DefaultBackoff,
		clock:    clockwork.NewRealClock(),
		logger:   infra.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll checks handle immediately and then once per interval while the
// operation is pending. onTerminal runs exactly once when the operation
// completes or fails. A failed check is retried after the backoff; a rejected
// credential ends polling with that error. Polling has no deadline of its
// own: cancel ctx to stop it, in which case ctx.Err() is returned and
// onTerminal is not called.
func (p *Poller) Poll(ctx context.Context, handle string, onTerminal func(domain.GenerationResult)) error {
	log := p.logger.With().Str("operation", handle).Logger()
	for checks := 1; ; checks++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := p.interval
		res, err := p.checker.CheckStatus(ctx, handle)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, domain.ErrAuthentication):
			return fmt.Errorf("poller: check %s: %w", handle, err)
		case errors.Is(err, domain.ErrTerminalGeneration):
			res = domain.GenerationResult{Status: domain.StatusFailed, Operation: handle, Reason: domain.FailureReason(err)}
			if perr := (*domain.ProviderError)(nil); errors.As(err, &perr) {
				res.Provider = perr.Provider
			}
			log.Warn().Int("checks", checks).Str("reason", res.Reason).Msg("poller: operation failed")
			onTerminal(res)
			return nil
		case err != nil:
			wait = p.backoff
			log.Warn().Err(err).Int("checks", checks).Dur("retry_in", wait).Msg("poller: status check failed")
		case res.Status.Terminal():
			log.Debug().Int("checks", checks).Str("status", string(res.Status)).Msg("poller: operation finished")
			onTerminal(res)
			return nil
		default:
			if p.progress != nil {
				p.progress(res)
			}
		}

		timer := p.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}
	}
}

// Await polls handle and returns its terminal result.
func (p *Poller) Await(ctx context.Context, handle string) (domain.GenerationResult, error) {
	var out domain.GenerationResult
	err := p.Poll(ctx, handle, func(res domain.GenerationResult) {
		out = res
	})
	if err != nil {
		return domain.GenerationResult{}, err
	}
	return out, nil
}
