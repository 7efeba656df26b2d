// Package providerset turns a resolved model string into a ready-to-use
// ai.Provider: it is the one place that knows how every provider name
// the resolver can produce maps onto a concrete client, its environment
// variables, and its OAuth credential key.
package providerset

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tallesborges/zdx/core/client"
	"github.com/tallesborges/zdx/core/client/middleware"
	"github.com/tallesborges/zdx/core/cost"
	"github.com/tallesborges/zdx/internal/config"
	"github.com/tallesborges/zdx/internal/credstore"
	"github.com/tallesborges/zdx/internal/modelscatalog"
	"github.com/tallesborges/zdx/internal/resolver"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/ai/anthropic"
	"github.com/tallesborges/zdx/providers/ai/claudecli"
	"github.com/tallesborges/zdx/providers/ai/gemini"
	"github.com/tallesborges/zdx/providers/ai/geminicli"
	"github.com/tallesborges/zdx/providers/ai/openai"
	"github.com/tallesborges/zdx/providers/ai/openaicodex"
)

// requestTimeout bounds a single provider call, streaming included. It is
// generous because large tool-using turns can run long completions.
const requestTimeout = 120 * time.Second

// openAICompatBackend names an OpenAI Chat-Completions-compatible host
// reached through providers/ai/openai's existing capability detection.
type openAICompatBackend struct {
	envAPIKey  string
	envBaseURL string
	defaultURL string
}

var openAICompatBackends = map[string]openAICompatBackend{
	"openrouter": {"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"},
	"moonshot":   {"MOONSHOT_API_KEY", "MOONSHOT_BASE_URL", "https://api.moonshot.ai/v1"},
	"stepfun":    {"STEPFUN_API_KEY", "STEPFUN_BASE_URL", "https://api.stepfun.com/v1"},
	"mimo":       {"MIMO_API_KEY", "MIMO_BASE_URL", "https://api.xiaomimimo.com/v1"},
	// zen and apiyi are meta-providers: each resolves to a specific
	// downstream official provider by looking up the requested model in
	// the shared model catalog (internal/modelscatalog), inheriting that
	// provider's capabilities and pricing. The wire format they speak is
	// OpenAI-compatible regardless of which model they're fronting, so
	// the HTTP client stays an openai.OpenAIProvider; only capabilities
	// and cost.ModelCost are catalog-derived. See applyCatalog below.
	"zen":   {"ZEN_API_KEY", "ZEN_BASE_URL", "https://zen.example/v1"},
	"apiyi": {"APIYI_API_KEY", "APIYI_BASE_URL", "https://api.apiyi.com/v1"},
}

// Build constructs the ai.Provider named by res, resolving credentials
// from store and settings from cfg, following the env > config > default
// precedence every provider setting in zdx uses. The returned ModelCost
// prices the model's tokens when the shared model catalog has an entry
// for it ("zdx models update" populates the cache Load reads); otherwise
// it is the zero value and usage goes unpriced, matching the behavior
// before any catalog was ever fetched.
func Build(res resolver.Resolution, cfg *config.Config, store *credstore.Store) (ai.Provider, cost.ModelCost, error) {
	p, err := build(res, cfg, store)
	if err != nil {
		return nil, cost.ModelCost{}, err
	}

	modelCost := applyCatalog(res, p)

	return wrap(p), modelCost, nil
}

// applyCatalog looks up res.Model in the shared model catalog and returns
// its pricing as a cost.ModelCost. For a meta-provider (zen, apiyi) it also
// pushes the catalog's reasoning/attachment flags onto p's capabilities,
// since those gateways route an official provider's model through an
// OpenAI-compatible wire format that doesn't advertise that model's own
// capabilities. A catalog miss, or "zdx models update" never having run,
// leaves p untouched and returns the zero cost.ModelCost.
func applyCatalog(res resolver.Resolution, p ai.Provider) cost.ModelCost {
	catalog, err := modelscatalog.Load()
	if err != nil {
		return cost.ModelCost{}
	}
	info, ok := catalog.Lookup(res.Model)
	if !ok {
		return cost.ModelCost{}
	}

	if resolver.IsMetaProvider(res.Provider) {
		if compat, isCompat := p.(*openai.OpenAIProvider); isCompat {
			caps := compat.GetCapabilities()
			caps.SupportsReasoning = info.Reasoning
			caps.SupportsMultimodal = info.Attachment
			compat.WithCapabilities(caps)
		}
	}

	return cost.ModelCost{
		InputCostPerMillion:       info.InputCostPerMillion,
		OutputCostPerMillion:      info.OutputCostPerMillion,
		CachedInputCostPerMillion: info.CacheReadCostPerMillion,
	}
}

// wrap adds the standard retry/timeout/logging chain every zdx provider
// call goes through, regardless of which concrete backend answers it.
func wrap(p ai.Provider) ai.Provider {
	return client.Wrap(p,
		middleware.NewRetryMiddleware(middleware.RetryConfig{}),
		middleware.NewTimeoutMiddleware(requestTimeout),
		middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
	)
}

func build(res resolver.Resolution, cfg *config.Config, store *credstore.Store) (ai.Provider, error) {
	switch res.Provider {
	case "anthropic":
		p := anthropic.New()
		if key := cfg.ProviderAPIKey("anthropic", "ANTHROPIC_API_KEY"); key != "" {
			p.WithAPIKey(key)
		}
		if url := cfg.ProviderBaseURL("anthropic", "ANTHROPIC_BASE_URL", ""); url != "" {
			p.WithBaseURL(url)
		}
		return p, nil

	case "claudecli":
		return claudecli.New(store, nil), nil

	case "openai":
		p := openai.NewOpenAIProvider()
		if key := cfg.ProviderAPIKey("openai", "OPENAI_API_KEY"); key != "" {
			p.WithAPIKey(key)
		}
		if url := cfg.ProviderBaseURL("openai", "OPENAI_BASE_URL", ""); url != "" {
			p.WithBaseURL(url)
		}
		return p, nil

	case "openaicodex":
		return openaicodex.New(store, nil), nil

	case "gemini":
		p := gemini.New()
		if key := cfg.ProviderAPIKey("gemini", "GEMINI_API_KEY"); key != "" {
			p.WithAPIKey(key)
		}
		if url := cfg.ProviderBaseURL("gemini", "GEMINI_BASE_URL", ""); url != "" {
			p.WithBaseURL(url)
		}
		return p, nil

	case "geminicli":
		return geminicli.New(store, nil), nil

	default:
		if backend, ok := openAICompatBackends[res.Provider]; ok {
			return buildOpenAICompat(res.Provider, backend, cfg), nil
		}
		return nil, fmt.Errorf("providerset: unknown provider %q", res.Provider)
	}
}

func buildOpenAICompat(name string, backend openAICompatBackend, cfg *config.Config) ai.Provider {
	p := openai.NewOpenAIProvider()
	p.WithAPIKey(cfg.ProviderAPIKey(name, backend.envAPIKey))
	p.WithBaseURL(cfg.ProviderBaseURL(name, backend.envBaseURL, backend.defaultURL))
	return p
}
