package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"reelgen/internal/domain"
	"reelgen/internal/pipeline"
)

type queueRepo struct {
	mu     sync.Mutex
	queued []*domain.Project
	status map[string]domain.ProjectStatus
	errMsg map[string]string
}

func newQueueRepo(ids ...string) *queueRepo {
	r := &queueRepo{status: map[string]domain.ProjectStatus{}, errMsg: map[string]string{}}
	for _, id := range ids {
		r.queued = append(r.queued, &domain.Project{ID: id, Status: domain.ProjectStatusQueued})
	}
	return r
}

func (r *queueRepo) Create(context.Context, domain.ProjectFacets) (*domain.Project, error) {
	return nil, errors.New("not implemented")
}

func (r *queueRepo) GetByID(context.Context, string) (*domain.Project, error) {
	return nil, domain.ErrNotFound
}

func (r *queueRepo) ClaimQueued(context.Context) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queued) == 0 {
		return nil, nil
	}
	p := r.queued[0]
	r.queued = r.queued[1:]
	r.status[p.ID] = domain.ProjectStatusRunning
	return p, nil
}

func (r *queueRepo) SaveScene(context.Context, string, domain.SceneRecord) error { return nil }

func (r *queueRepo) UpdateStatus(_ context.Context, id string, status domain.ProjectStatus, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[id] = status
	r.errMsg[id] = msg
	return nil
}

func (r *queueRepo) get(id string) (domain.ProjectStatus, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status[id], r.errMsg[id]
}

type renderFunc func(ctx context.Context, project *domain.Project) error

func (f renderFunc) Run(ctx context.Context, project *domain.Project, _ pipeline.Generator, _ pipeline.CheckerLookup) error {
	return f(ctx, project)
}

func okSessions(context.Context) (pipeline.Generator, pipeline.CheckerLookup, error) {
	return nil, nil, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerRendersQueuedProjectsWithinConcurrency(t *testing.T) {
	repo := newQueueRepo("a", "b", "c")
	var mu sync.Mutex
	running, peak, done := 0, 0, 0
	render := renderFunc(func(ctx context.Context, p *domain.Project) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		running--
		done++
		mu.Unlock()
		return repo.UpdateStatus(ctx, p.ID, domain.ProjectStatusSucceeded, "")
	})
	w := newProjectWorker(repo, render, okSessions, 2, nil)
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return done == 3
	})
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	if peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
	for _, id := range []string{"a", "b", "c"} {
		if status, _ := repo.get(id); status != domain.ProjectStatusSucceeded {
			t.Fatalf("project %s status = %s", id, status)
		}
	}
}

func TestWorkerWakesOnNotification(t *testing.T) {
	repo := newQueueRepo()
	rendered := make(chan string, 1)
	render := renderFunc(func(_ context.Context, p *domain.Project) error {
		rendered <- p.ID
		return nil
	})
	w := newProjectWorker(repo, render, okSessions, 1, nil)
	w.interval = time.Hour
	wake := make(chan string, 1)
	w.wake = wake

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(10 * time.Millisecond)
	repo.mu.Lock()
	repo.queued = append(repo.queued, &domain.Project{ID: "late"})
	repo.mu.Unlock()
	wake <- "late"

	select {
	case id := <-rendered:
		if id != "late" {
			t.Fatalf("rendered %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not wake up")
	}
}

func TestWorkerMarksSessionFailure(t *testing.T) {
	repo := newQueueRepo("p1")
	sessions := func(context.Context) (pipeline.Generator, pipeline.CheckerLookup, error) {
		return nil, nil, fmt.Errorf("credentials: list tokens: %w", errors.New("db down"))
	}
	render := renderFunc(func(context.Context, *domain.Project) error {
		t.Fatalf("pipeline must not run without a session")
		return nil
	})
	w := newProjectWorker(repo, render, sessions, 1, nil)
	w.process(context.Background(), &domain.Project{ID: "p1"})

	status, msg := repo.get("p1")
	if status != domain.ProjectStatusFailed || msg != "credentials: list tokens: db down" {
		t.Fatalf("status = %s %q", status, msg)
	}
}

func TestWorkerRequeuesOnShutdown(t *testing.T) {
	repo := newQueueRepo()
	ctx, cancel := context.WithCancel(context.Background())
	render := renderFunc(func(ctx context.Context, _ *domain.Project) error {
		cancel()
		return ctx.Err()
	})
	w := newProjectWorker(repo, render, okSessions, 1, nil)
	w.process(ctx, &domain.Project{ID: "p1"})

	if status, _ := repo.get("p1"); status != domain.ProjectStatusQueued {
		t.Fatalf("status = %s, want queued", status)
	}
}
