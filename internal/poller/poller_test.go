package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"reelgen/internal/domain"
)

type scriptedChecker struct {
	mu      sync.Mutex
	results []domain.GenerationResult
	errs    []error
	calls   int
}

func (s *scriptedChecker) CheckStatus(_ context.Context, handle string) (domain.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return domain.GenerationResult{}, s.errs[i]
	}
	res := s.results[len(s.results)-1]
	if i < len(s.results) {
		res = s.results[i]
	}
	res.Operation = handle
	return res, nil
}

func (s *scriptedChecker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pending() domain.GenerationResult { return domain.GenerationResult{Status: domain.StatusPending} }

func done() domain.GenerationResult {
	return domain.GenerationResult{Status: domain.StatusCompleted, Media: domain.RemoteMedia("https://cdn.example.com/v.mp4", "video/mp4")}
}

func TestPollInvokesTerminalOnceAfterPendingChecks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checker := &scriptedChecker{results: []domain.GenerationResult{pending(), pending(), pending(), done()}}
	fc := clockwork.NewFakeClock()
	var progress int
	p := New(checker, WithClock(fc), WithProgress(func(domain.GenerationResult) { progress++ }))

	var terminal []domain.GenerationResult
	errc := make(chan error, 1)
	go func() {
		errc <- p.Poll(ctx, "op-1", func(res domain.GenerationResult) {
			terminal = append(terminal, res)
		})
	}()

	for i := 0; i < 3; i++ {
		if err := fc.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("waiting for timer %d: %v", i, err)
		}
		fc.Advance(DefaultInterval)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if checker.count() != 4 {
		t.Fatalf("checks = %d, want 4", checker.count())
	}
	if len(terminal) != 1 || terminal[0].Status != domain.StatusCompleted || terminal[0].Operation != "op-1" {
		t.Fatalf("terminal callbacks = %#v", terminal)
	}
	if progress != 3 {
		t.Fatalf("progress callbacks = %d, want 3", progress)
	}
}

func TestPollDoesNotCheckBeforeInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checker := &scriptedChecker{results: []domain.GenerationResult{pending(), done()}}
	fc := clockwork.NewFakeClock()
	p := New(checker, WithClock(fc), WithInterval(time.Minute))

	errc := make(chan error, 1)
	go func() { errc <- p.Poll(ctx, "op-2", func(domain.GenerationResult) {}) }()

	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	fc.Advance(59 * time.Second)
	if checker.count() != 1 {
		t.Fatalf("checks = %d before the interval elapsed, want 1", checker.count())
	}
	fc.Advance(time.Second)
	if err := <-errc; err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if checker.count() != 2 {
		t.Fatalf("checks = %d, want 2", checker.count())
	}
}

func TestPollBacksOffOnCheckError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checker := &scriptedChecker{
		errs:    []error{domain.TransientError("veo", errors.New("status 503"))},
		results: []domain.GenerationResult{pending(), done()},
	}
	fc := clockwork.NewFakeClock()
	p := New(checker, WithClock(fc), WithInterval(10*time.Second), WithBackoff(15*time.Second))

	errc := make(chan error, 1)
	go func() { errc <- p.Poll(ctx, "op-3", func(domain.GenerationResult) {}) }()

	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	fc.Advance(10 * time.Second)
	if checker.count() != 1 {
		t.Fatalf("retried before backoff elapsed")
	}
	fc.Advance(5 * time.Second)
	if err := <-errc; err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if checker.count() != 2 {
		t.Fatalf("checks = %d, want 2", checker.count())
	}
}

func TestPollCancellationSkipsTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	checker := &scriptedChecker{results: []domain.GenerationResult{pending()}}
	fc := clockwork.NewFakeClock()
	p := New(checker, WithClock(fc))

	called := false
	errc := make(chan error, 1)
	go func() { errc <- p.Poll(ctx, "op-4", func(domain.GenerationResult) { called = true }) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := fc.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatalf("onTerminal called after cancellation")
	}
}

func TestPollTerminalAndAuthErrors(t *testing.T) {
	terminal := &scriptedChecker{errs: []error{domain.TerminalError("seedance", errors.New("content rejected"))}, results: []domain.GenerationResult{pending()}}
	res, err := New(terminal, WithClock(clockwork.NewFakeClock())).Await(context.Background(), "op-5")
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if res.Status != domain.StatusFailed || res.Reason != "content rejected" || res.Provider != "seedance" {
		t.Fatalf("unexpected result %#v", res)
	}

	auth := &scriptedChecker{errs: []error{domain.AuthError("veo", nil)}, results: []domain.GenerationResult{pending()}}
	if _, err := New(auth, WithClock(clockwork.NewFakeClock())).Await(context.Background(), "op-6"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestAwaitReturnsCompletedImmediately(t *testing.T) {
	checker := &scriptedChecker{results: []domain.GenerationResult{done()}}
	res, err := New(checker).Await(context.Background(), "op-7")
	if err != nil || res.Status != domain.StatusCompleted {
		t.Fatalf("Await = %#v, %v", res, err)
	}
}
