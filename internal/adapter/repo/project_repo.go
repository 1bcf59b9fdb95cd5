package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository on the marker-tagged SQL runner.
type ProjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProjectRepository creates a new project repository backed by PostgreSQL.
func NewProjectRepository(sql infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql}
}

// Create inserts a queued project.
func (r *ProjectRepositoryPG) Create(ctx context.Context, facets domain.ProjectFacets) (*domain.Project, error) {
	raw, err := json.Marshal(facets)
	if err != nil {
		return nil, fmt.Errorf("repo: encode facets: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertProject, uuid.NewString(), raw)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("repo: insert project: %w", err)
	}
	return project, nil
}

// GetByID fetches a project and its scenes.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	project, err := scanProject(r.sql.QueryRow(ctx, sqlinline.QSelectProject, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: select project: %w", err)
	}
	scenes, err := r.scenes(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Scenes = scenes
	return project, nil
}

// ClaimQueued moves the oldest queued project to running. It returns nil, nil
// when the queue is empty.
func (r *ProjectRepositoryPG) ClaimQueued(ctx context.Context) (*domain.Project, error) {
	project, err := scanProject(r.sql.QueryRow(ctx, sqlinline.QWorkerClaimProject))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo: claim project: %w", err)
	}
	return project, nil
}

// SaveScene upserts the outcome of one scene.
func (r *ProjectRepositoryPG) SaveScene(ctx context.Context, projectID string, scene domain.SceneRecord) error {
	attempts := scene.Attempts
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	rawAttempts, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("repo: encode attempts: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QUpsertProjectScene,
		projectID,
		scene.Number,
		scene.SceneType,
		scene.Prompt,
		scene.NegativePrompt,
		string(scene.Status),
		scene.Provider,
		scene.Operation,
		scene.MediaURL,
		scene.StorageKey,
		rawAttempts,
		scene.Error,
	)
	if err != nil {
		return fmt.Errorf("repo: save scene %d: %w", scene.Number, err)
	}
	return nil
}

// UpdateStatus records a project state transition.
func (r *ProjectRepositoryPG) UpdateStatus(ctx context.Context, projectID string, status domain.ProjectStatus, errMsg string) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QUpdateProjectStatus, projectID, string(status), errMsg); err != nil {
		return fmt.Errorf("repo: update project status: %w", err)
	}
	return nil
}

func (r *ProjectRepositoryPG) scenes(ctx context.Context, projectID string) ([]domain.SceneRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectProjectScenes, projectID)
	if err != nil {
		return nil, fmt.Errorf("repo: select scenes: %w", err)
	}
	defer rows.Close()

	var scenes []domain.SceneRecord
	for rows.Next() {
		var (
			scene       domain.SceneRecord
			status      string
			rawAttempts []byte
		)
		if err := rows.Scan(
			&scene.Number,
			&scene.SceneType,
			&scene.Prompt,
			&scene.NegativePrompt,
			&status,
			&scene.Provider,
			&scene.Operation,
			&scene.MediaURL,
			&scene.StorageKey,
			&rawAttempts,
			&scene.Error,
		); err != nil {
			return nil, fmt.Errorf("repo: scan scene: %w", err)
		}
		scene.Status = domain.ResultStatus(status)
		if len(rawAttempts) > 0 {
			if err := json.Unmarshal(rawAttempts, &scene.Attempts); err != nil {
				return nil, fmt.Errorf("repo: decode attempts: %w", err)
			}
		}
		scenes = append(scenes, scene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate scenes: %w", err)
	}
	return scenes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		project   domain.Project
		status    string
		rawFacets []byte
	)
	if err := row.Scan(&project.ID, &status, &rawFacets, &project.Error, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	project.Status = domain.ProjectStatus(status)
	if len(rawFacets) > 0 {
		if err := json.Unmarshal(rawFacets, &project.Facets); err != nil {
			return nil, fmt.Errorf("decode facets: %w", err)
		}
	}
	return &project, nil
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
