package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// MediaKind enumerates the media a provider can produce.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// ParseMediaKind normalizes free-form input into a supported media kind.
func ParseMediaKind(raw string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(raw))) {
	case MediaKindImage:
		return MediaKindImage, nil
	case MediaKindVideo:
		return MediaKindVideo, nil
	default:
		return "", fmt.Errorf("unsupported media kind %q", raw)
	}
}

// ResultStatus enumerates the lifecycle of a generation result.
type ResultStatus string

const (
	StatusPending   ResultStatus = "pending"
	StatusCompleted ResultStatus = "completed"
	StatusFailed    ResultStatus = "failed"
)

// Terminal reports whether no further polling is required.
func (s ResultStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SimulationProvider tags results produced without any upstream provider.
const SimulationProvider = "simulation"

// GenerationRequest is the provider-agnostic description of one generation
// call. It is passed by value and never mutated once built.
type GenerationRequest struct {
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negative_prompt,omitempty"`
	Kind           MediaKind `json:"kind"`
	AspectRatio    string    `json:"aspect_ratio,omitempty"`
	DurationHint   string    `json:"duration,omitempty"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
	Seed           int       `json:"seed,omitempty"`
	RequestID      string    `json:"-"`
}

// WithSeed returns a copy of the request carrying the given seed.
func (r GenerationRequest) WithSeed(seed int) GenerationRequest {
	r.Seed = seed
	return r
}

// WithRequestID returns a copy of the request tagged with a correlation id.
func (r GenerationRequest) WithRequestID(id string) GenerationRequest {
	r.RequestID = id
	return r
}

// Dimensions returns the explicit pixel size, or one derived from the aspect ratio.
func (r GenerationRequest) Dimensions() (int, int) {
	if r.Width > 0 && r.Height > 0 {
		return r.Width, r.Height
	}
	return AspectDimensions(r.AspectRatio)
}

// AspectDimensions maps an aspect ratio onto the pixel size providers expect.
func AspectDimensions(aspect string) (int, int) {
	switch strings.TrimSpace(strings.ToLower(aspect)) {
	case "16:9":
		return 1344, 768
	case "9:16":
		return 768, 1344
	case "4:5":
		return 1024, 1280
	case "3:2":
		return 1536, 1024
	default:
		return 1024, 1024
	}
}

// MediaRef points at generated media, either inline bytes or a remote URL.
type MediaRef struct {
	URL  string `json:"url,omitempty"`
	MIME string `json:"mime,omitempty"`
	Data []byte `json:"-"`
}

// InlineMedia wraps raw bytes.
func InlineMedia(mime string, data []byte) MediaRef {
	if strings.TrimSpace(mime) == "" {
		mime = "application/octet-stream"
	}
	return MediaRef{MIME: mime, Data: data}
}

// RemoteMedia wraps a URL hosted by the provider.
func RemoteMedia(url, mime string) MediaRef {
	return MediaRef{URL: strings.TrimSpace(url), MIME: mime}
}

// Inline reports whether the media bytes are carried in-process.
func (m MediaRef) Inline() bool {
	return len(m.Data) > 0
}

// Empty reports whether the reference points at nothing.
func (m MediaRef) Empty() bool {
	return len(m.Data) == 0 && m.URL == ""
}

// String renders the transport form: a data URL for inline media, the URL otherwise.
func (m MediaRef) String() string {
	if m.Inline() {
		return fmt.Sprintf("data:%s;base64,%s", m.MIME, base64.StdEncoding.EncodeToString(m.Data))
	}
	return m.URL
}

// MarshalJSON always emits the transport form in the url field.
func (m MediaRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL  string `json:"url,omitempty"`
		MIME string `json:"mime,omitempty"`
	}{URL: m.String(), MIME: m.MIME})
}

// ParseDataURL decodes a base64 data URL into an inline media reference.
func ParseDataURL(raw string) (MediaRef, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return MediaRef{}, fmt.Errorf("not a data url")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return MediaRef{}, fmt.Errorf("malformed data url")
	}
	mime, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return MediaRef{}, fmt.Errorf("unsupported data url encoding %q", encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return MediaRef{}, fmt.Errorf("decode data url: %w", err)
	}
	return InlineMedia(mime, data), nil
}

// Attempt records one failed provider attempt.
type Attempt struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// GenerationResult is the normalized outcome of a provider call or status check.
// A new value is produced for every poll; terminal results are never modified.
type GenerationResult struct {
	Status    ResultStatus    `json:"status"`
	Media     MediaRef        `json:"media"`
	Provider  string          `json:"provider"`
	Operation string          `json:"operation,omitempty"`
	Progress  int             `json:"progress,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Attempts  []Attempt       `json:"attempts,omitempty"`
}

// Degraded reports whether the result is a simulated placeholder.
func (r GenerationResult) Degraded() bool {
	return r.Provider == SimulationProvider
}

// AttemptSummary renders one line per failed provider for diagnostics.
func (r GenerationResult) AttemptSummary() string {
	if len(r.Attempts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Provider, a.Reason))
	}
	return strings.Join(lines, "\n")
}
