package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidPrompt = errors.New("invalid prompt")

	// ErrAuthentication marks a missing or rejected provider credential.
	ErrAuthentication = errors.New("provider authentication failed")
	// ErrTransientProvider marks transport failures and malformed responses.
	ErrTransientProvider = errors.New("transient provider failure")
	// ErrTerminalGeneration marks a provider job that was accepted and then failed.
	ErrTerminalGeneration = errors.New("generation failed")
	// ErrProvidersExhausted is recorded when every configured provider failed.
	ErrProvidersExhausted = errors.New("all providers failed")
	ErrUnknownProvider    = errors.New("unknown provider")
)

// ProviderError ties an upstream failure to the provider that produced it and
// to one of the taxonomy sentinels above.
type ProviderError struct {
	Provider string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// AuthError builds an authentication failure for provider.
func AuthError(provider string, err error) error {
	if err == nil {
		err = errors.New("credential missing")
	}
	return &ProviderError{Provider: provider, Kind: ErrAuthentication, Err: err}
}

// TransientError builds a fallback-eligible failure for provider.
func TransientError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: ErrTransientProvider, Err: err}
}

// TerminalError builds a job failure that must not fall back.
func TerminalError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: ErrTerminalGeneration, Err: err}
}

// ClassifyHTTPStatus maps an upstream HTTP status onto the error taxonomy.
// It returns nil for successful statuses.
func ClassifyHTTPStatus(provider string, status int, message string) error {
	if status < http.StatusBadRequest {
		return nil
	}
	err := fmt.Errorf("status %d", status)
	if message != "" {
		err = fmt.Errorf("status %d: %s", status, message)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return AuthError(provider, err)
	}
	return TransientError(provider, err)
}

// FailureReason extracts the user-facing reason from a provider error.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err.Error()
	}
	return err.Error()
}
