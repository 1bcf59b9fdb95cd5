package domain

import (
	"encoding/json"
	"fmt"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">` +
	`<rect width="100%%" height="100%%" fill="#222"/>` +
	`<text x="50%%" y="50%%" font-family="Arial" font-size="40" fill="#666" text-anchor="middle">%s</text>` +
	`</svg>`

// PlaceholderMedia returns the static asset used for degraded results.
func PlaceholderMedia(kind MediaKind) MediaRef {
	label := "Simulated Master Image"
	width, height := 1024, 1024
	if kind == MediaKindVideo {
		label = "Simulated Scene Video"
		width, height = AspectDimensions("9:16")
	}
	return InlineMedia("image/svg+xml", []byte(fmt.Sprintf(placeholderSVG, width, height, label)))
}

// SimulatedResult builds the degraded completed result returned when no
// provider produced media. The attempt log is copied so callers own it.
func SimulatedResult(kind MediaKind, attempts []Attempt) GenerationResult {
	log := make([]Attempt, len(attempts))
	copy(log, attempts)
	raw, _ := json.Marshal(map[string]any{
		"simulated": true,
		"kind":      kind,
		"attempts":  log,
	})
	return GenerationResult{
		Status:   StatusCompleted,
		Media:    PlaceholderMedia(kind),
		Provider: SimulationProvider,
		Raw:      raw,
		Attempts: log,
	}
}
