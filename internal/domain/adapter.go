package domain

import "context"

// Adapter is the contract implemented by every generation backend. Synchronous
// adapters return a completed result; asynchronous ones return a pending
// result carrying an operation handle and also implement StatusChecker.
type Adapter interface {
	Name() string
	Kind() MediaKind
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// StatusChecker queries the state of an operation started by an asynchronous adapter.
type StatusChecker interface {
	CheckStatus(ctx context.Context, handle string) (GenerationResult, error)
}

// AsyncAdapter is an Adapter whose results must be polled.
type AsyncAdapter interface {
	Adapter
	StatusChecker
}

// Credentials is a caller-supplied bundle of provider secrets keyed by provider name.
type Credentials map[string]string

// Get returns the secret for provider, or an empty string.
func (c Credentials) Get(provider string) string {
	if c == nil {
		return ""
	}
	return c[provider]
}

// Has reports whether a non-empty secret exists for provider.
func (c Credentials) Has(provider string) bool {
	return c.Get(provider) != ""
}

// Merge returns a new bundle where entries from override win.
func (c Credentials) Merge(override Credentials) Credentials {
	out := make(Credentials, len(c)+len(override))
	for k, v := range c {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range override {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Redacted lists which providers are configured without exposing secrets.
func (c Credentials) Redacted() map[string]bool {
	out := make(map[string]bool, len(c))
	for k, v := range c {
		out[k] = v != ""
	}
	return out
}
