package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/sqlinline"
)

// Credential names as stored in integration_tokens. One secret may serve
// several adapters (gemini covers imagen and veo).
const (
	ProviderGemini      = "gemini"
	ProviderReplicate   = "replicate"
	ProviderHuggingFace = "huggingface"
	ProviderDashScope   = "dashscope"
	ProviderOpenAI      = "openai"
	ProviderArk         = "ark"
)

// KnownProviders lists every credential name accepted by Set.
var KnownProviders = []string{
	ProviderGemini,
	ProviderReplicate,
	ProviderHuggingFace,
	ProviderDashScope,
	ProviderOpenAI,
	ProviderArk,
}

type Store struct {
	sql infra.SQLExecutor
}

// NewStore returns a store over sql. A nil executor yields a store that only
// ever reports empty tokens, used when the API runs without a database.
func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	if s == nil || s.sql == nil {
		return "", nil
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// All returns every stored token keyed by provider.
func (s *Store) All(ctx context.Context) (domain.Credentials, error) {
	out := domain.Credentials{}
	if s == nil || s.sql == nil {
		return out, nil
	}
	rows, err := s.sql.Query(ctx, sqlinline.QSelectIntegrationTokens)
	if err != nil {
		return nil, fmt.Errorf("credentials: list tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var provider, token string
		if err := rows.Scan(&provider, &token); err != nil {
			return nil, fmt.Errorf("credentials: scan token: %w", err)
		}
		if token = strings.TrimSpace(token); token != "" {
			out[provider] = token
		}
	}
	return out, rows.Err()
}

// Bundle merges environment secrets over stored tokens; a non-empty env value wins.
func (s *Store) Bundle(ctx context.Context, env map[string]string) (domain.Credentials, error) {
	stored, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return stored.Merge(domain.Credentials(env)), nil
}

// Set stores token for provider, replacing any previous value.
func (s *Store) Set(ctx context.Context, provider, token string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !slices.Contains(KnownProviders, provider) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s token is required", provider)
	}
	return s.upsert(ctx, provider, token, map[string]any{"source": "cli"})
}

// Delete removes the stored token for provider.
func (s *Store) Delete(ctx context.Context, provider string) error {
	if s == nil || s.sql == nil {
		return nil
	}
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, strings.ToLower(strings.TrimSpace(provider)))
	return err
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	if s == nil || s.sql == nil {
		return fmt.Errorf("credentials: database not configured")
	}
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
