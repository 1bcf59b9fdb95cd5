// Package catalog holds the read-only facet tables used to compose prompts.
package catalog

import (
	"fmt"
	"strings"
)

// SceneType enumerates the fixed narrative beats of a storyboard.
type SceneType string

const (
	SceneHook    SceneType = "HOOK"
	SceneBenefit SceneType = "BENEFIT"
	SceneDemo    SceneType = "DEMO"
	SceneCTA     SceneType = "CTA"
)

// SceneOrder is the storyboard sequence.
var SceneOrder = []SceneType{SceneHook, SceneBenefit, SceneDemo, SceneCTA}

// ParseSceneType accepts any casing of a known scene type.
func ParseSceneType(raw string) (SceneType, error) {
	st := SceneType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range SceneOrder {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown scene type %q", raw)
}

// Persona locks the subject's appearance across every scene.
type Persona struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Lighting    string `json:"lighting"`
	Quality     string `json:"quality"`
	Consistency string `json:"consistency"`
}

type Background struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Niche adapts the prompt to a product category.
type Niche struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	ProductFocus string   `json:"product_focus"`
	Expressions  string   `json:"expressions"`
	Actions      []string `json:"actions"`
	Atmosphere   string   `json:"atmosphere"`
	ColorGrading string   `json:"color_grading"`
}

type CameraWork struct {
	Movement    string `json:"movement"`
	Composition string `json:"composition"`
	Angle       string `json:"angle"`
}

// Scene describes one storyboard beat.
type Scene struct {
	Type     SceneType  `json:"type"`
	Purpose  string     `json:"purpose"`
	Duration string     `json:"duration"`
	Camera   CameraWork `json:"camera"`
	Actions  []string   `json:"actions"`
	Suffix   string     `json:"suffix"`
}

type StylePreset struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Camera   string `json:"camera"`
	Lighting string `json:"lighting"`
	Color    string `json:"color"`
	Mood     string `json:"mood"`
}

// Catalog indexes every facet table by key. It is never mutated after construction.
type Catalog struct {
	personas    map[string]Persona
	backgrounds map[string]Background
	niches      map[string]Niche
	scenes      map[SceneType]Scene
	styles      map[string]StylePreset

	personaOrder    []string
	backgroundOrder []string
	nicheOrder      []string
	styleOrder      []string
}

// New indexes the given tables. Listing order follows slice order.
func New(personas []Persona, backgrounds []Background, niches []Niche, scenes []Scene, styles []StylePreset) *Catalog {
	c := &Catalog{
		personas:    make(map[string]Persona, len(personas)),
		backgrounds: make(map[string]Background, len(backgrounds)),
		niches:      make(map[string]Niche, len(niches)),
		scenes:      make(map[SceneType]Scene, len(scenes)),
		styles:      make(map[string]StylePreset, len(styles)),
	}
	for _, p := range personas {
		c.personas[p.Key] = p
		c.personaOrder = append(c.personaOrder, p.Key)
	}
	for _, b := range backgrounds {
		c.backgrounds[b.Key] = b
		c.backgroundOrder = append(c.backgroundOrder, b.Key)
	}
	for _, n := range niches {
		c.niches[n.Key] = n
		c.nicheOrder = append(c.nicheOrder, n.Key)
	}
	for _, s := range scenes {
		c.scenes[s.Type] = s
	}
	for _, s := range styles {
		c.styles[s.Key] = s
		c.styleOrder = append(c.styleOrder, s.Key)
	}
	return c
}

func (c *Catalog) Persona(key string) (Persona, bool) {
	p, ok := c.personas[key]
	return p, ok
}

func (c *Catalog) Background(key string) (Background, bool) {
	b, ok := c.backgrounds[key]
	return b, ok
}

func (c *Catalog) Niche(key string) (Niche, bool) {
	n, ok := c.niches[key]
	return n, ok
}

func (c *Catalog) Scene(t SceneType) (Scene, bool) {
	s, ok := c.scenes[t]
	return s, ok
}

func (c *Catalog) Style(key string) (StylePreset, bool) {
	s, ok := c.styles[key]
	return s, ok
}

// NamedOption is a key/display-name pair for pickers.
type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Listing is the API view of the catalog.
type Listing struct {
	Personas    []NamedOption `json:"personas"`
	Backgrounds []NamedOption `json:"backgrounds"`
	Niches      []NamedOption `json:"niches"`
	Styles      []NamedOption `json:"styles"`
	Scenes      []SceneType   `json:"scenes"`
}

// List returns every facet in its declared order.
func (c *Catalog) List() Listing {
	out := Listing{Scenes: append([]SceneType(nil), SceneOrder...)}
	for _, k := range c.personaOrder {
		out.Personas = append(out.Personas, NamedOption{Key: k, Name: c.personas[k].Name})
	}
	for _, k := range c.backgroundOrder {
		out.Backgrounds = append(out.Backgrounds, NamedOption{Key: k, Name: c.backgrounds[k].Name})
	}
	for _, k := range c.nicheOrder {
		out.Niches = append(out.Niches, NamedOption{Key: k, Name: c.niches[k].Name})
	}
	for _, k := range c.styleOrder {
		out.Styles = append(out.Styles, NamedOption{Key: k, Name: c.styles[k].Name})
	}
	return out
}
