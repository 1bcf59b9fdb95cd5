// Package pipeline renders a project's storyboard into scene videos.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/poller"
	"reelgen/internal/prompt"
)

// Generator runs one request through the provider fallback chain.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// CheckerLookup returns the status checker of an asynchronous provider.
type CheckerLookup func(provider string) (domain.StatusChecker, error)

// MediaStore persists finished media and returns its storage key and URL.
type MediaStore interface {
	Persist(ctx context.Context, keyPrefix string, media domain.MediaRef) (string, string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *infra.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollerOptions sets the options used for every scene's poller.
func WithPollerOptions(opts ...poller.Option) Option {
	return func(p *Pipeline) {
		p.pollOpts = append(p.pollOpts, opts...)
	}
}

// WithSceneTimeout bounds how long one scene's operation is polled.
func WithSceneTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.sceneTimeout = d
	}
}

// Pipeline composes the storyboard, generates every scene concurrently and
// records each scene's outcome. Scene failures never abort sibling scenes.
type Pipeline struct {
	composer     *prompt.Composer
	repo         domain.ProjectRepository
	store        MediaStore
	pollOpts     []poller.Option
	sceneTimeout time.Duration
	logger       *infra.Logger
}

func New(composer *prompt.Composer, repo domain.ProjectRepository, store MediaStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		composer:     composer,
		repo:         repo,
		store:        store,
		sceneTimeout: 10 * time.Minute,
		logger:       infra.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run renders project and stores its final status. The returned error is
// non-nil only for cancellation, composition failures and persistence errors.
func (p *Pipeline) Run(ctx context.Context, project *domain.Project, gen Generator, checkers CheckerLookup) error {
	log := p.logger.With().Str("project_id", project.ID).Logger()
	board, err := p.composer.BuildStoryboard(prompt.FacetsOf(project.Facets))
	if err != nil {
		if uerr := p.repo.UpdateStatus(ctx, project.ID, domain.ProjectStatusFailed, err.Error()); uerr != nil {
			log.Error().Err(uerr).Msg("pipeline: mark project failed")
		}
		return fmt.Errorf("pipeline: build storyboard: %w", err)
	}

	records := make([]domain.SceneRecord, len(board))
	g, gctx := errgroup.WithContext(ctx)
	for i, scene := range board {
		g.Go(func() error {
			rec, err := p.renderScene(gctx, project.ID, scene, gen, checkers)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	status, summary := outcome(records)
	if err := p.repo.UpdateStatus(ctx, project.ID, status, summary); err != nil {
		return fmt.Errorf("pipeline: update project: %w", err)
	}
	log.Info().Str("status", string(status)).Str("summary", summary).Msg("pipeline: project finished")
	return nil
}

func (p *Pipeline) renderScene(ctx context.Context, projectID string, scene prompt.SceneDescriptor, gen Generator, checkers CheckerLookup) (domain.SceneRecord, error) {
	req := scene.Request.WithRequestID(projectID + "-" + strconv.Itoa(scene.Number))
	rec := domain.SceneRecord{
		Number:         scene.Number,
		SceneType:      string(scene.Type),
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Status:         domain.StatusPending,
	}
	log := p.logger.With().Str("project_id", projectID).Int("scene", scene.Number).Logger()

	res, err := gen.Generate(ctx, req)
	if err != nil {
		return rec, err
	}
	attempts := res.Attempts
	polled := res.Status == domain.StatusPending
	if polled {
		rec.Provider, rec.Operation = res.Provider, res.Operation
		if err := p.repo.SaveScene(ctx, projectID, rec); err != nil {
			return rec, fmt.Errorf("pipeline: save scene %d: %w", scene.Number, err)
		}
		res, err = p.await(ctx, res, checkers)
		if err != nil {
			if ctx.Err() != nil {
				return rec, ctx.Err()
			}
			res = domain.GenerationResult{Status: domain.StatusFailed, Provider: rec.Provider, Operation: rec.Operation, Reason: err.Error()}
		}
	}

	rec.Status = res.Status
	rec.Provider = res.Provider
	rec.Operation = res.Operation
	rec.Attempts = res.Attempts
	if polled {
		rec.Attempts = append(append([]domain.Attempt(nil), attempts...), res.Attempts...)
	}
	switch res.Status {
	case domain.StatusCompleted:
		key, url, err := p.store.Persist(ctx, fmt.Sprintf("projects/%s/scene-%d", projectID, scene.Number), res.Media)
		if err != nil {
			if ctx.Err() != nil {
				return rec, ctx.Err()
			}
			rec.Status = domain.StatusFailed
			rec.Error = err.Error()
			break
		}
		rec.StorageKey, rec.MediaURL = key, url
		if res.Degraded() {
			rec.Error = res.Reason
		}
	default:
		rec.Error = res.Reason
	}
	log.Info().Str("status", string(rec.Status)).Str("provider", rec.Provider).Msg("pipeline: scene finished")
	if err := p.repo.SaveScene(ctx, projectID, rec); err != nil {
		return rec, fmt.Errorf("pipeline: save scene %d: %w", scene.Number, err)
	}
	return rec, nil
}

func (p *Pipeline) await(ctx context.Context, pending domain.GenerationResult, checkers CheckerLookup) (domain.GenerationResult, error) {
	if checkers == nil {
		return domain.GenerationResult{}, errors.New("no status checker configured")
	}
	checker, err := checkers(pending.Provider)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	pollCtx := ctx
	if p.sceneTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.sceneTimeout)
		defer cancel()
	}
	res, err := poller.New(checker, append(p.pollOpts, poller.WithLogger(p.logger))...).Await(pollCtx, pending.Operation)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return domain.GenerationResult{}, fmt.Errorf("operation %s timed out after %s", pending.Operation, p.sceneTimeout)
	}
	if err != nil {
		return domain.GenerationResult{}, err
	}
	if res.Provider == "" {
		res.Provider = pending.Provider
	}
	return res, nil
}

// outcome marks a project succeeded when every scene completed and lists the
// failed scenes otherwise.
func outcome(records []domain.SceneRecord) (domain.ProjectStatus, string) {
	var failed []string
	degraded := 0
	for _, r := range records {
		switch {
		case r.Status != domain.StatusCompleted:
			failed = append(failed, strconv.Itoa(r.Number))
		case r.Provider == domain.SimulationProvider:
			degraded++
		}
	}
	if len(failed) > 0 {
		return domain.ProjectStatusFailed, "scenes " + strings.Join(failed, ", ") + " failed"
	}
	if degraded > 0 {
		return domain.ProjectStatusSucceeded, fmt.Sprintf("%d scenes simulated", degraded)
	}
	return domain.ProjectStatusSucceeded, ""
}
