// Package geminicli implements the OAuth-authenticated Gemini CLI surface
// (Google's Cloud Code Assist API): the same generateContent request/response
// shape as providers/ai/gemini, wrapped in a {project, request} envelope and
// authenticated with a Cloud Code Assist OAuth access token tied to a GCP
// project instead of a plain API key.
package geminicli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tallesborges/zdx/internal/credstore"
	"github.com/tallesborges/zdx/internal/utils"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/ai/gemini"
)

const (
	defaultBaseURL = "https://cloudcode-pa.googleapis.com/v1internal"
	defaultModel   = "gemini-2.5-pro"
	credentialKey  = "gemini-cli"
)

// requestEnvelope is the Cloud Code Assist wrapper around a plain Gemini
// generateContent request body: the project the OAuth credential is scoped
// to, the model being invoked, and a user_prompt_id that groups requests
// for rate-limit accounting.
type requestEnvelope struct {
	Project      string          `json:"project"`
	Model        string          `json:"model"`
	UserPromptID string          `json:"user_prompt_id,omitempty"`
	Request      json.RawMessage `json:"request"`
}

// responseEnvelope mirrors the server's wrapping of the underlying
// generateContent response.
type responseEnvelope struct {
	Response json.RawMessage `json:"response"`
}

// Provider implements ai.Provider for the Cloud Code Assist surface.
type Provider struct {
	store     *credstore.Store
	refresh   credstore.RefreshFunc
	client    *http.Client
	baseURL   string
	sessionID string
	seq       atomic.Int64
}

// New builds a geminicli Provider. A fresh sessionID is generated once per
// Provider and reused across requests; each request's user_prompt_id is
// "<sessionID>########<seq>" with seq incrementing per call, matching the
// upstream CLI's per-session rate-limit grouping.
func New(store *credstore.Store, refresh credstore.RefreshFunc) *Provider {
	return &Provider{
		store:     store,
		refresh:   refresh,
		client:    &http.Client{},
		baseURL:   defaultBaseURL,
		sessionID: uuid.NewString(),
	}
}

func (p *Provider) WithAPIKey(string) ai.Provider { return p }

func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage resolves the OAuth credential (refreshing if expired),
// extracts the bound GCP project id from the credential's account id, and
// calls the Cloud Code Assist generateContent endpoint.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	cred, err := p.resolveCredential()
	if err != nil {
		return nil, fmt.Errorf("geminicli: %w", err)
	}

	model := request.Model
	if model == "" {
		model = defaultModel
	}

	innerBody, err := gemini.BuildGenerateContentRequest(request)
	if err != nil {
		return nil, fmt.Errorf("geminicli: building request: %w", err)
	}

	promptID := fmt.Sprintf("%s########%d", p.sessionID, p.seq.Add(1))
	envelope := requestEnvelope{Project: cred.AccountID, Model: model, UserPromptID: promptID, Request: innerBody}
	url := p.baseURL + ":generateContent"

	_, resp, err := utils.DoPostSync[responseEnvelope](ctx, p.client, url, cred.Access, envelope)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("geminicli: empty response")
	}

	result, err := gemini.ParseGenerateContentResponse(resp.Response)
	if err != nil {
		return nil, fmt.Errorf("geminicli: parsing response: %w", err)
	}
	result.Model = model
	return result, nil
}

func (p *Provider) resolveCredential() (credstore.Credential, error) {
	cred, ok := p.store.Get(credentialKey)
	if !ok {
		return credstore.Credential{}, fmt.Errorf("no Gemini CLI OAuth credentials found, run 'zdx login --gemini-cli' to authenticate")
	}
	if cred.AccountID == "" {
		return credstore.Credential{}, fmt.Errorf("missing project id in Gemini CLI credentials")
	}
	if _, err := p.store.Resolve(credentialKey, p.refresh); err != nil {
		return credstore.Credential{}, err
	}
	cred, _ = p.store.Get(credentialKey)
	return cred, nil
}

// IsStopMessage applies the same finish-reason rules as the base Gemini
// provider: the wire format is identical, only transport differs.
func (p *Provider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	if len(message.ToolCalls) > 0 {
		return false
	}
	switch message.FinishReason {
	case "stop", "length", "content_filter":
		return true
	}
	return message.Content == "" && len(message.Images) == 0
}
