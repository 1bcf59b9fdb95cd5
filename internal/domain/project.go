package domain

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusQueued    ProjectStatus = "queued"
	ProjectStatusRunning   ProjectStatus = "running"
	ProjectStatusSucceeded ProjectStatus = "succeeded"
	ProjectStatusFailed    ProjectStatus = "failed"
)

// ProjectFacets captures the facet identifiers shared by every scene of a project.
type ProjectFacets struct {
	Persona    string `json:"persona"`
	Background string `json:"background"`
	Niche      string `json:"niche"`
	Style      string `json:"style"`
	Product    string `json:"product"`
}

// Project is one storyboard rendered into scene videos by the worker.
type Project struct {
	ID        string
	Status    ProjectStatus
	Facets    ProjectFacets
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Scenes    []SceneRecord
}

// SceneRecord is the persisted outcome of one storyboard scene.
type SceneRecord struct {
	Number         int          `json:"scene_number"`
	SceneType      string       `json:"scene_type"`
	Prompt         string       `json:"prompt"`
	NegativePrompt string       `json:"negative_prompt"`
	Status         ResultStatus `json:"status"`
	Provider       string       `json:"provider,omitempty"`
	Operation      string       `json:"operation,omitempty"`
	MediaURL       string       `json:"media_url,omitempty"`
	StorageKey     string       `json:"storage_key,omitempty"`
	Attempts       []Attempt    `json:"attempts,omitempty"`
	Error          string       `json:"error,omitempty"`
}
