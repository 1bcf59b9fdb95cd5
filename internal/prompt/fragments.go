package prompt

import (
	"strings"

	"reelgen/internal/catalog"
)

// Fragment is one named step of the prompt. Steps run in declaration order.
type Fragment struct {
	Name  string
	Build func(s Selection) string
}

// NamedFragment is the rendered output of a Fragment.
type NamedFragment struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Selection is the set of resolved catalog entries a prompt is built from.
type Selection struct {
	Persona      catalog.Persona
	Background   catalog.Background
	Niche        catalog.Niche
	Scene        catalog.Scene
	Style        catalog.StylePreset
	Product      string
	CustomAction string
}

// Fragments lists the composition steps in prompt order.
var Fragments = []Fragment{
	{Name: "subject", Build: func(s Selection) string {
		return join(s.Persona.Subject, s.Persona.Consistency)
	}},
	{Name: "environment", Build: func(s Selection) string {
		return "in " + s.Background.Description
	}},
	{Name: "action", Build: func(s Selection) string {
		return join(sceneAction(s.Scene, s.CustomAction), NicheAction(s.Niche, s.Scene.Type))
	}},
	{Name: "product", Build: func(s Selection) string {
		return join("holding "+s.Product, s.Niche.ProductFocus)
	}},
	{Name: "expression", Build: func(s Selection) string {
		return join(s.Niche.Expressions, s.Niche.Atmosphere)
	}},
	{Name: "camera", Build: func(s Selection) string {
		return join(s.Scene.Camera.Movement, s.Scene.Camera.Composition, s.Scene.Camera.Angle)
	}},
	{Name: "style", Build: func(s Selection) string {
		return join(s.Style.Camera, s.Style.Lighting)
	}},
	{Name: "grading", Build: func(s Selection) string {
		return join(s.Niche.ColorGrading, s.Persona.Lighting, s.Persona.Quality)
	}},
	{Name: "purpose", Build: func(s Selection) string {
		return s.Scene.Suffix
	}},
}

// Render runs every fragment step against the selection.
func Render(s Selection) []NamedFragment {
	out := make([]NamedFragment, 0, len(Fragments))
	for _, f := range Fragments {
		out = append(out, NamedFragment{Name: f.Name, Text: f.Build(s)})
	}
	return out
}

func sceneAction(scene catalog.Scene, override string) string {
	if override != "" {
		return override
	}
	if len(scene.Actions) == 0 {
		return ""
	}
	return scene.Actions[0]
}

// sceneKeywords maps each scene type to the niche action keywords it prefers.
// Scene types without an entry fall back to closingKeywords.
var sceneKeywords = map[catalog.SceneType][]string{
	catalog.SceneHook:    {"holding"},
	catalog.SceneBenefit: {"showing", "reading"},
	catalog.SceneDemo:    {"applying", "demonstrating"},
}

var closingKeywords = []string{"smile", "gesture"}

// NicheAction picks the first niche action matching the scene's keywords,
// falling back to the niche's first action.
func NicheAction(niche catalog.Niche, scene catalog.SceneType) string {
	keywords, ok := sceneKeywords[scene]
	if !ok {
		keywords = closingKeywords
	}
	for _, action := range niche.Actions {
		for _, kw := range keywords {
			if strings.Contains(action, kw) {
				return action
			}
		}
	}
	if len(niche.Actions) == 0 {
		return ""
	}
	return niche.Actions[0]
}

func join(parts ...string) string {
	return strings.Join(parts, Separator)
}
