package catalog

import "testing"

func TestDefaultCatalogResolvesEverySceneType(t *testing.T) {
	c := Default()
	for _, st := range SceneOrder {
		scene, ok := c.Scene(st)
		if !ok {
			t.Fatalf("scene %s missing", st)
		}
		if scene.Duration != "4 seconds" {
			t.Fatalf("scene %s duration = %q, want %q", st, scene.Duration, "4 seconds")
		}
		if len(scene.Actions) == 0 {
			t.Fatalf("scene %s has no actions", st)
		}
	}
}

func TestPersonasCarryConsistencyLock(t *testing.T) {
	c := Default()
	for _, opt := range c.List().Personas {
		p, ok := c.Persona(opt.Key)
		if !ok {
			t.Fatalf("listed persona %q does not resolve", opt.Key)
		}
		if p.Consistency != standardConsistency {
			t.Fatalf("persona %q consistency = %q", opt.Key, p.Consistency)
		}
	}
}

func TestListKeepsDeclaredOrder(t *testing.T) {
	listing := Default().List()
	wantStyles := []string{"vlog", "studio", "cinematic"}
	if len(listing.Styles) != len(wantStyles) {
		t.Fatalf("styles = %#v", listing.Styles)
	}
	for i, key := range wantStyles {
		if listing.Styles[i].Key != key {
			t.Fatalf("styles[%d] = %q, want %q", i, listing.Styles[i].Key, key)
		}
	}
	if len(listing.Scenes) != 4 || listing.Scenes[0] != SceneHook || listing.Scenes[3] != SceneCTA {
		t.Fatalf("scenes = %#v", listing.Scenes)
	}
}

func TestParseSceneType(t *testing.T) {
	got, err := ParseSceneType(" demo ")
	if err != nil {
		t.Fatalf("ParseSceneType returned error: %v", err)
	}
	if got != SceneDemo {
		t.Fatalf("ParseSceneType = %q, want %q", got, SceneDemo)
	}
	if _, err := ParseSceneType("OUTRO"); err == nil {
		t.Fatalf("expected error for unknown scene type")
	}
}
