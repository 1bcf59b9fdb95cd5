package prompt

import (
	"errors"
	"strings"
	"testing"

	"reelgen/internal/catalog"
	"reelgen/internal/domain"
)

func TestBuildStoryboardOrdersAndNumbersScenes(t *testing.T) {
	c := NewComposer(nil)
	board, err := c.BuildStoryboard(SharedFacets{
		Persona:    "indonesian_man_fair",
		Background: "studio_white",
		Niche:      "elektronik",
		Style:      "cinematic",
		Product:    "Wireless Earbuds Pro",
	})
	if err != nil {
		t.Fatalf("BuildStoryboard returned error: %v", err)
	}
	if len(board) != 4 {
		t.Fatalf("len(board) = %d, want 4", len(board))
	}
	want := []catalog.SceneType{catalog.SceneHook, catalog.SceneBenefit, catalog.SceneDemo, catalog.SceneCTA}
	persona, _ := c.Catalog().Persona("indonesian_man_fair")
	for i, scene := range board {
		if scene.Number != i+1 {
			t.Fatalf("scene[%d].Number = %d, want %d", i, scene.Number, i+1)
		}
		if scene.Type != want[i] {
			t.Fatalf("scene[%d].Type = %s, want %s", i, scene.Type, want[i])
		}
		if !strings.HasPrefix(scene.Request.Prompt, persona.Subject+", "+persona.Consistency) {
			t.Fatalf("scene %d does not lead with the locked persona", scene.Number)
		}
		if !strings.Contains(scene.Request.Prompt, "holding Wireless Earbuds Pro") {
			t.Fatalf("scene %d lost the product", scene.Number)
		}
	}
}

func TestBuildStoryboardPropagatesCompositionError(t *testing.T) {
	_, err := NewComposer(nil).BuildStoryboard(SharedFacets{
		Persona:    "indonesian_woman_fair",
		Background: "studio_white",
		Niche:      "pets",
		Style:      "vlog",
	})
	var compErr *CompositionError
	if !errors.As(err, &compErr) || compErr.Key != "pets" {
		t.Fatalf("expected CompositionError naming pets, got %v", err)
	}
}

func TestMasterImagePrompt(t *testing.T) {
	req, err := NewComposer(nil).MasterImagePrompt(SharedFacets{
		Background: "studio_white",
		Style:      "studio",
		Product:    "Batik Dress",
	})
	if err != nil {
		t.Fatalf("MasterImagePrompt returned error: %v", err)
	}
	if !strings.HasPrefix(req.Prompt, "Professional product photography of Batik Dress, professional studio setup") {
		t.Fatalf("unexpected prompt %q", req.Prompt)
	}
	if !strings.HasSuffix(req.Prompt, "studio style, high quality, 4k, photorealistic") {
		t.Fatalf("unexpected prompt %q", req.Prompt)
	}
	if req.Kind != domain.MediaKindImage || req.AspectRatio != "1:1" {
		t.Fatalf("unexpected request shape %#v", req)
	}
}

func TestNewSeedRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		seed := NewSeed()
		if seed < 100000 || seed > 999999 {
			t.Fatalf("seed %d out of range", seed)
		}
	}
}
