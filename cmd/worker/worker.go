package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/pipeline"
)

// sessionFunc opens one credential session for a project.
type sessionFunc func(ctx context.Context) (pipeline.Generator, pipeline.CheckerLookup, error)

type renderer interface {
	Run(ctx context.Context, project *domain.Project, gen pipeline.Generator, checkers pipeline.CheckerLookup) error
}

// projectWorker claims queued projects on every tick or wake-up and renders
// up to len(slots) of them at once.
type projectWorker struct {
	projects domain.ProjectRepository
	pipeline renderer
	sessions sessionFunc
	logger   *infra.Logger
	interval time.Duration
	slots    chan struct{}
	wake     <-chan string
	wg       sync.WaitGroup
}

func newProjectWorker(projects domain.ProjectRepository, pipe renderer, sessions sessionFunc, concurrency int, logger *infra.Logger) *projectWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &projectWorker{
		projects: projects,
		pipeline: pipe,
		sessions: sessions,
		logger:   logger,
		interval: claimInterval,
		slots:    make(chan struct{}, concurrency),
	}
}

func (w *projectWorker) Run(ctx context.Context) error {
	w.logger.Info().Int("concurrency", cap(w.slots)).Msg("worker: started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.drain(ctx)
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
		case id, ok := <-w.wake:
			if !ok {
				w.wake = nil
				continue
			}
			w.logger.Debug().Str("project_id", id).Msg("worker: woken")
		}
	}
}

// drain claims projects while free slots remain.
func (w *projectWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case w.slots <- struct{}{}:
		default:
			return
		}
		project, err := w.projects.ClaimQueued(ctx)
		if err != nil || project == nil {
			<-w.slots
			if err != nil && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("worker: failed to claim project")
			}
			return
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.slots }()
			w.process(ctx, project)
		}()
	}
}

func (w *projectWorker) process(ctx context.Context, project *domain.Project) {
	log := w.logger.With().Str("project_id", project.ID).Logger()
	log.Info().Msg("worker: picked project")

	gen, checkers, err := w.sessions(ctx)
	if err == nil {
		err = w.pipeline.Run(ctx, project, gen, checkers)
	}
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// shutting down: hand the project back for the next worker
		requeueCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if uerr := w.projects.UpdateStatus(requeueCtx, project.ID, domain.ProjectStatusQueued, ""); uerr != nil {
			log.Error().Err(uerr).Msg("worker: requeue failed")
		}
	case errors.Is(err, domain.ErrInvalidPrompt):
		log.Warn().Err(err).Msg("worker: project rejected")
	default:
		log.Error().Err(err).Msg("worker: project failed")
		if uerr := w.projects.UpdateStatus(ctx, project.ID, domain.ProjectStatusFailed, err.Error()); uerr != nil {
			log.Error().Err(uerr).Msg("worker: update status failed")
		}
	}
}
