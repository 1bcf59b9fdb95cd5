package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/orchestrator"
	"reelgen/internal/poller"
	"reelgen/internal/prompt"
	"reelgen/internal/providers/vision"
	"reelgen/internal/queue"
)

// providerKeyHeader prefixes per-request provider secrets, e.g. X-Provider-Key-Gemini.
const providerKeyHeader = "X-Provider-Key-"

const maxBodyBytes = 12 << 20

var validate = newValidator()

// newValidator adds notblank, which rejects whitespace-only strings that
// required lets through.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// CredentialSource resolves the server-side provider bundle.
type CredentialSource interface {
	Bundle(ctx context.Context, env map[string]string) (domain.Credentials, error)
}

// ProviderSource builds adapters, status checkers and describers for a bundle.
type ProviderSource interface {
	orchestrator.AdapterSource
	StatusChecker(name string, creds domain.Credentials) (domain.StatusChecker, error)
	Describer(ctx context.Context, creds domain.Credentials) vision.Describer
}

// MediaReader loads persisted media by storage key.
type MediaReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

type App struct {
	Config      *infra.Config
	Logger      *infra.Logger
	Composer    *prompt.Composer
	Providers   ProviderSource
	Chains      orchestrator.Chains
	Credentials CredentialSource
	Projects    domain.ProjectRepository
	Media       MediaReader
	Notifier    queue.Notifier
	PollOptions []poller.Option
}

// NewApp fills defaults for the optional collaborators of app.
func NewApp(app App) *App {
	if app.Logger == nil {
		app.Logger = infra.NopLogger()
	}
	if app.Composer == nil {
		app.Composer = prompt.NewComposer(nil)
	}
	if app.Chains == nil {
		app.Chains = orchestrator.DefaultChains()
	}
	if app.Notifier == nil {
		app.Notifier = queue.Nop{}
	}
	return &app
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errorBody{Code: errCode, Message: message}})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var compErr *prompt.CompositionError
	switch {
	case errors.As(err, &compErr):
		a.error(w, http.StatusBadRequest, "invalid_prompt", compErr.Error())
	case errors.Is(err, domain.ErrInvalidPrompt):
		a.error(w, http.StatusBadRequest, "invalid_prompt", err.Error())
	case errors.Is(err, domain.ErrUnknownProvider):
		a.error(w, http.StatusBadRequest, "unknown_provider", err.Error())
	case errors.Is(err, domain.ErrAuthentication):
		a.error(w, http.StatusUnauthorized, "provider_auth", domain.FailureReason(err))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrTransientProvider):
		a.error(w, http.StatusBadGateway, "provider_unavailable", domain.FailureReason(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusServiceUnavailable, "canceled", "request canceled")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("handler failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body into dst and validates its struct tags.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// credentials merges caller-supplied provider keys over the server bundle.
func (a *App) credentials(r *http.Request) (domain.Credentials, error) {
	env := map[string]string{}
	if a.Config != nil {
		env = a.Config.ServerCredentials()
	}
	server := domain.Credentials(env)
	if a.Credentials != nil {
		bundle, err := a.Credentials.Bundle(r.Context(), env)
		if err != nil {
			return nil, err
		}
		server = bundle
	}
	return server.Merge(callerCredentials(r.Header)), nil
}

func callerCredentials(h http.Header) domain.Credentials {
	out := domain.Credentials{}
	for name, values := range h {
		if !strings.HasPrefix(name, providerKeyHeader) || len(values) == 0 {
			continue
		}
		provider := strings.ToLower(strings.TrimPrefix(name, providerKeyHeader))
		if secret := strings.TrimSpace(values[0]); provider != "" && secret != "" {
			out[provider] = secret
		}
	}
	return out
}

func (a *App) orchestrator(creds domain.Credentials) *orchestrator.Orchestrator {
	return orchestrator.New(a.Chains, a.Providers, creds, orchestrator.WithLogger(a.Logger))
}
