// Package claudecli implements the OAuth-authenticated "Claude Code"
// CLI surface of the Anthropic Messages API: the same endpoint as
// providers/ai/anthropic, but authenticated with an OAuth bearer token
// instead of an x-api-key, carrying the claude-code beta header, and
// prepending the CLI's own system-prompt identity line ahead of any
// caller-supplied system prompt.
package claudecli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tallesborges/zdx/internal/credstore"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/ai/anthropic"
)

const (
	// betaHeader enables both the claude-code product surface and OAuth
	// bearer authentication on Anthropic's Messages API.
	betaHeader = "claude-code-20250219,oauth-2025-04-20"

	// systemPromptPrefix identifies the client to the model, exactly as
	// the official CLI does; it is prepended to (never replaces) any
	// caller-supplied system prompt.
	systemPromptPrefix = "You are Claude Code, Anthropic's official CLI for Claude."

	credentialKey = "claude-cli"
)

// Provider implements ai.Provider and ai.StreamProvider for the OAuth
// Claude Code surface, delegating wire handling to providers/ai/anthropic
// and layering credential resolution and system-prompt identity on top.
type Provider struct {
	inner   *anthropic.AnthropicProvider
	store   *credstore.Store
	refresh credstore.RefreshFunc
}

// New builds a claudecli Provider backed by store for credential
// resolution. refresh exchanges a refresh token for a new access token
// when the cached one has expired; pass nil if refresh is unsupported
// in the current build (the caller will then see an actionable error
// once the cached token expires).
func New(store *credstore.Store, refresh credstore.RefreshFunc) *Provider {
	return &Provider{inner: anthropic.New(), store: store, refresh: refresh}
}

// WithHttpClient sets the HTTP client used for outbound requests.
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.inner.WithHttpClient(httpClient)
	return p
}

// WithBaseURL overrides the API base URL.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.inner.WithBaseURL(baseURL)
	return p
}

// WithAPIKey is a no-op passthrough for interface compatibility:
// claudecli authenticates via the OAuth credential store, not a
// directly-supplied API key.
func (p *Provider) WithAPIKey(string) ai.Provider { return p }

func (p *Provider) resolveAndPrepare(request ai.ChatRequest) (ai.ChatRequest, error) {
	token, err := p.store.Resolve(credentialKey, p.refresh)
	if err != nil {
		return request, fmt.Errorf("claudecli: %w", err)
	}
	p.inner.WithAPIKey(token)
	p.inner.WithCapabilities(anthropic.Capabilities{BetaFeatures: []string{betaHeader}})

	prepared := request
	if prepared.SystemPrompt == "" {
		prepared.SystemPrompt = systemPromptPrefix
	} else {
		prepared.SystemPrompt = systemPromptPrefix + "\n\n" + prepared.SystemPrompt
	}
	return prepared, nil
}

// SendMessage resolves a valid OAuth token, prepends the Claude Code
// system-prompt identity, and delegates to the Anthropic Messages API.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	prepared, err := p.resolveAndPrepare(request)
	if err != nil {
		return nil, err
	}
	return p.inner.SendMessage(ctx, prepared)
}

// StreamMessage is the streaming counterpart of SendMessage.
func (p *Provider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	prepared, err := p.resolveAndPrepare(request)
	if err != nil {
		return nil, err
	}
	return p.inner.StreamMessage(ctx, prepared)
}

// IsStopMessage delegates to the underlying Anthropic provider's stop
// detection, which is wire-format-identical for the CLI surface.
func (p *Provider) IsStopMessage(message *ai.ChatResponse) bool {
	return p.inner.IsStopMessage(message)
}
