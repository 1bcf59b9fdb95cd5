package handlers

import (
	"net/http"

	"reelgen/internal/catalog"
	"reelgen/internal/domain"
	"reelgen/internal/prompt"
)

type composeRequest struct {
	Persona      string `json:"persona" validate:"required"`
	Background   string `json:"background" validate:"required"`
	Niche        string `json:"niche" validate:"required"`
	Scene        string `json:"scene" validate:"required"`
	Style        string `json:"style" validate:"required"`
	Product      string `json:"product" validate:"max=200"`
	CustomAction string `json:"custom_action" validate:"max=500"`
}

type composeResponse struct {
	SceneType catalog.SceneType        `json:"scene_type"`
	Duration  string                   `json:"duration"`
	Request   domain.GenerationRequest `json:"request"`
}

type storyboardRequest struct {
	Persona    string `json:"persona" validate:"required"`
	Background string `json:"background" validate:"required"`
	Niche      string `json:"niche" validate:"required"`
	Style      string `json:"style" validate:"required"`
	Product    string `json:"product" validate:"max=200"`
}

func (s storyboardRequest) facets() prompt.SharedFacets {
	return prompt.SharedFacets{
		Persona:    s.Persona,
		Background: s.Background,
		Niche:      s.Niche,
		Style:      s.Style,
		Product:    s.Product,
	}
}

func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Composer.Catalog().List())
}

func (a *App) ComposePrompt(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !a.decode(w, r, &req) {
		return
	}
	scene, err := catalog.ParseSceneType(req.Scene)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_prompt", err.Error())
		return
	}
	out, err := a.Composer.Compose(prompt.Facets{
		Persona:      req.Persona,
		Background:   req.Background,
		Niche:        req.Niche,
		Scene:        scene,
		Style:        req.Style,
		Product:      req.Product,
		CustomAction: req.CustomAction,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, composeResponse{SceneType: scene, Duration: out.DurationHint, Request: out})
}

func (a *App) Storyboard(w http.ResponseWriter, r *http.Request) {
	var req storyboardRequest
	if !a.decode(w, r, &req) {
		return
	}
	board, err := a.Composer.BuildStoryboard(req.facets())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"scenes": board})
}
