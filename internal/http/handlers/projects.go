package handlers

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"reelgen/internal/domain"
	"reelgen/pkg/zip"
)

type projectResponse struct {
	ID        string               `json:"id"`
	Status    domain.ProjectStatus `json:"status"`
	Facets    domain.ProjectFacets `json:"facets"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Scenes    []domain.SceneRecord `json:"scenes"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	scenes := p.Scenes
	if scenes == nil {
		scenes = []domain.SceneRecord{}
	}
	return projectResponse{
		ID:        p.ID,
		Status:    p.Status,
		Facets:    p.Facets,
		Error:     p.Error,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Scenes:    scenes,
	}
}

func (a *App) projectsAvailable(w http.ResponseWriter) bool {
	if a.Projects == nil {
		a.error(w, http.StatusServiceUnavailable, "projects_unavailable", "project storage is not configured")
		return false
	}
	return true
}

// CreateProject validates the facets by building the storyboard, stores the
// project as queued and wakes the worker.
func (a *App) CreateProject(w http.ResponseWriter, r *http.Request) {
	if !a.projectsAvailable(w) {
		return
	}
	var req storyboardRequest
	if !a.decode(w, r, &req) {
		return
	}
	if _, err := a.Composer.BuildStoryboard(req.facets()); err != nil {
		a.fail(w, r, err)
		return
	}
	project, err := a.Projects.Create(r.Context(), domain.ProjectFacets{
		Persona:    req.Persona,
		Background: req.Background,
		Niche:      req.Niche,
		Style:      req.Style,
		Product:    req.Product,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Notifier.ProjectQueued(r.Context(), project.ID); err != nil {
		a.Logger.Warn().Err(err).Str("project_id", project.ID).Msg("project notification failed")
	}
	a.json(w, http.StatusAccepted, toProjectResponse(project))
}

func (a *App) GetProject(w http.ResponseWriter, r *http.Request) {
	if !a.projectsAvailable(w) {
		return
	}
	project, err := a.Projects.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProjectResponse(project))
}

// ProjectArchive streams a zip of every persisted scene plus a manifest.
func (a *App) ProjectArchive(w http.ResponseWriter, r *http.Request) {
	if !a.projectsAvailable(w) {
		return
	}
	project, err := a.Projects.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var assets []zip.Asset
	for _, scene := range project.Scenes {
		if scene.StorageKey == "" || a.Media == nil {
			continue
		}
		data, err := a.Media.Read(r.Context(), scene.StorageKey)
		if err != nil {
			a.Logger.Warn().Err(err).Str("project_id", project.ID).Int("scene", scene.Number).Msg("archive: scene media unreadable")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("scene-%d%s", scene.Number, path.Ext(scene.StorageKey)),
			Data:     data,
		})
	}
	archive, err := zip.ArchiveWithManifest(assets, toProjectResponse(project))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=project-%s.zip", project.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
