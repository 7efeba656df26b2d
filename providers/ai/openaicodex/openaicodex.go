// Package openaicodex implements the OAuth-authenticated Codex CLI surface:
// the same Responses API request/response shape as providers/ai/openai, but
// pointed at ChatGPT's backend-api/codex endpoint and authenticated with a
// ChatGPT OAuth access token instead of a platform API key.
package openaicodex

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tallesborges/zdx/internal/credstore"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/ai/openai"
)

const (
	defaultBaseURL = "https://chatgpt.com/backend-api/codex"
	credentialKey  = "openai-codex"
)

// Provider implements ai.Provider for the Codex CLI surface, delegating
// wire handling to providers/ai/openai (forced onto the Responses API
// endpoint, which is the only one Codex's backend exposes) and layering
// OAuth credential resolution on top.
type Provider struct {
	inner   *openai.OpenAIProvider
	store   *credstore.Store
	refresh credstore.RefreshFunc
}

// New builds an openaicodex Provider backed by store for credential
// resolution.
func New(store *credstore.Store, refresh credstore.RefreshFunc) *Provider {
	inner := openai.NewOpenAIProvider()
	inner.WithBaseURL(defaultBaseURL)
	inner.WithCapabilities(openai.Capabilities{SupportsResponses: true, ToolCallMode: openai.ToolCallModeTools})
	return &Provider{inner: inner, store: store, refresh: refresh}
}

func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.inner.WithHttpClient(httpClient)
	return p
}

// WithBaseURL overrides the Codex backend base URL.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.inner.WithBaseURL(baseURL)
	p.inner.WithCapabilities(openai.Capabilities{SupportsResponses: true, ToolCallMode: openai.ToolCallModeTools})
	return p
}

// WithAPIKey is a no-op passthrough: openaicodex authenticates via the
// OAuth credential store, not a directly-supplied API key.
func (p *Provider) WithAPIKey(string) ai.Provider { return p }

// SendMessage resolves a valid OAuth access token and delegates to the
// OpenAI Responses API client.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	token, err := p.store.Resolve(credentialKey, p.refresh)
	if err != nil {
		return nil, fmt.Errorf("openaicodex: %w", err)
	}
	p.inner.WithAPIKey(token)
	return p.inner.SendMessage(ctx, request)
}

// StreamMessage is the streaming counterpart of SendMessage.
func (p *Provider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	token, err := p.store.Resolve(credentialKey, p.refresh)
	if err != nil {
		return nil, fmt.Errorf("openaicodex: %w", err)
	}
	p.inner.WithAPIKey(token)
	return p.inner.StreamMessage(ctx, request)
}

// IsStopMessage delegates to the underlying OpenAI provider's stop
// detection, which is wire-format-identical for the Codex surface.
func (p *Provider) IsStopMessage(message *ai.ChatResponse) bool {
	return p.inner.IsStopMessage(message)
}
