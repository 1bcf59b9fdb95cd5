package domain

import "context"

// ProjectRepository persists projects and their scenes.
type ProjectRepository interface {
	Create(ctx context.Context, facets ProjectFacets) (*Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	ClaimQueued(ctx context.Context) (*Project, error)
	SaveScene(ctx context.Context, projectID string, scene SceneRecord) error
	UpdateStatus(ctx context.Context, projectID string, status ProjectStatus, errMsg string) error
}
