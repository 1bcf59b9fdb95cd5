// Package orchestrator drives generation requests through an ordered list of
// provider adapters, falling back on failure and degrading to a simulated
// result when every provider fails.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
)

const disabledReason = "skipped: credential rejected earlier in this session"

// AdapterSource builds the credential-filtered adapters for a chain.
type AdapterSource interface {
	Adapters(kind domain.MediaKind, names []string, creds domain.Credentials) []domain.Adapter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(logger *infra.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator is bound to one credential bundle for one session. Adapters
// that reject their credential stay disabled for the orchestrator's lifetime;
// nothing else is shared between calls.
type Orchestrator struct {
	chains Chains
	source AdapterSource
	creds  domain.Credentials
	logger *infra.Logger

	mu       sync.Mutex
	disabled map[string]struct{}
}

func New(chains Chains, source AdapterSource, creds domain.Credentials, opts ...Option) *Orchestrator {
	if chains == nil {
		chains = DefaultChains()
	}
	o := &Orchestrator{
		chains:   chains,
		source:   source,
		creds:    creds,
		logger:   infra.NopLogger(),
		disabled: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs req through the configured chain for req.Kind.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	var adapters []domain.Adapter
	if o.source != nil {
		adapters = o.source.Adapters(req.Kind, o.chains.For(req.Kind), o.creds)
	}
	return o.GenerateWith(ctx, req, adapters)
}

// GenerateWith tries adapters strictly in order and returns the first
// success. A terminal job failure is returned as a Failed result without
// further fallback. When every adapter fails, or none is available, the
// result is the simulated placeholder carrying the attempt log. The only
// error returned is the context's.
func (o *Orchestrator) GenerateWith(ctx context.Context, req domain.GenerationRequest, adapters []domain.Adapter) (domain.GenerationResult, error) {
	var attempts []domain.Attempt
	for _, adapter := range adapters {
		if err := ctx.Err(); err != nil {
			return domain.GenerationResult{}, err
		}
		name := adapter.Name()
		if o.isDisabled(name) {
			attempts = append(attempts, domain.Attempt{Provider: name, Reason: disabledReason})
			continue
		}

		log := o.logger.With().Str("provider", name).Str("kind", string(req.Kind)).Str("request_id", req.RequestID).Logger()
		res, err := adapter.Generate(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.GenerationResult{}, ctxErr
			}
			reason := domain.FailureReason(err)
			switch {
			case errors.Is(err, domain.ErrTerminalGeneration):
				log.Warn().Str("reason", reason).Msg("orchestrator: generation failed terminally")
				return failed(name, reason, append(attempts, domain.Attempt{Provider: name, Reason: reason})), nil
			case errors.Is(err, domain.ErrAuthentication):
				o.disable(name)
				log.Warn().Str("reason", reason).Msg("orchestrator: provider disabled after authentication failure")
			default:
				log.Warn().Str("reason", reason).Msg("orchestrator: provider failed, falling back")
			}
			attempts = append(attempts, domain.Attempt{Provider: name, Reason: reason})
			continue
		}

		if res.Provider == "" {
			res.Provider = name
		}
		if res.Status == domain.StatusFailed {
			log.Warn().Str("reason", res.Reason).Msg("orchestrator: provider rejected job")
			res.Attempts = append(attempts, domain.Attempt{Provider: name, Reason: res.Reason})
			return res, nil
		}
		res.Attempts = attempts
		log.Info().Str("status", string(res.Status)).Str("operation", res.Operation).Int("failed_attempts", len(attempts)).Msg("orchestrator: provider accepted request")
		return res, nil
	}

	res := domain.SimulatedResult(req.Kind, attempts)
	if len(attempts) > 0 {
		res.Reason = domain.ErrProvidersExhausted.Error()
	} else {
		res.Reason = "no provider configured"
	}
	o.logger.Warn().
		Str("kind", string(req.Kind)).
		Str("request_id", req.RequestID).
		Int("attempts", len(attempts)).
		Str("summary", res.AttemptSummary()).
		Msg("orchestrator: returning simulated result")
	return res, nil
}

// Disabled lists the providers disabled in this session.
func (o *Orchestrator) Disabled() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.disabled))
	for name := range o.disabled {
		out = append(out, name)
	}
	return out
}

func (o *Orchestrator) isDisabled(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.disabled[name]
	return ok
}

func (o *Orchestrator) disable(name string) {
	o.mu.Lock()
	o.disabled[name] = struct{}{}
	o.mu.Unlock()
}

func failed(provider, reason string, attempts []domain.Attempt) domain.GenerationResult {
	return domain.GenerationResult{
		Status:   domain.StatusFailed,
		Provider: provider,
		Reason:   reason,
		Attempts: attempts,
	}
}
