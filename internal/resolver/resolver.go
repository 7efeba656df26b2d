// Package resolver maps a user-facing model string (e.g. "claude-opus",
// "zen:gpt-5", "openrouter:meta/llama-3") onto a concrete provider name
// and the model id that provider expects, following a fixed prefix
// table with a final environment/config/default fallback.
//
// The table-driven dispatch here mirrors the provider constructors in
// providers/ai/<provider> that each own exactly one backend; resolver
// decides *which* constructor a request should use before any provider
// package is touched.
package resolver

import (
	"regexp"
	"strings"
)

// Resolution is the outcome of resolving a model string: which provider
// backs it, and the model id with the prefix removed. A trailing
// "-thinking"/"-nothinking" suffix stays in Model and is also reported
// in ThinkingHint; no suffix-free model id is provided.
type Resolution struct {
	Provider     string
	Model        string
	ThinkingHint string // "thinking" | "nothinking" | ""
}

// prefixRule maps a literal prefix to a provider name. Rules are
// checked in table order and the first match wins; every prefix ends
// in ':', so no rule is a prefix of another.
type prefixRule struct {
	prefix   string
	provider string
}

var prefixTable = []prefixRule{
	{"claude-cli:", "claudecli"},
	{"openai:", "openai"},
	{"openrouter:", "openrouter"},
	{"moonshot:", "moonshot"},
	{"stepfun:", "stepfun"},
	{"mimo:", "mimo"},
	{"gemini-cli:", "geminicli"},
	{"gemini:", "gemini"},
	{"google:", "gemini"},
	{"zen:", "zen"},
	{"apiyi:", "apiyi"},
}

// openAICodexPattern matches the bare, unprefixed model ids ("gpt-5",
// "o3", "o4-mini", ...) that route to the ChatGPT-backed OAuth provider
// by default rather than the plain OpenAI API key provider, which is
// only reached through the explicit "openai:" prefix.
var openAICodexPattern = regexp.MustCompile(`^(gpt-|o[0-9])`)

// metaProviders resolve to a concrete downstream provider via the model
// catalog rather than a single fixed backend; Resolve still reports them
// by their own name so the caller can look up catalog-derived routing.
var metaProviders = map[string]bool{"zen": true, "apiyi": true}

// Resolve applies the prefix table to modelString. Prefixed strings
// always strip their prefix from the canonical model id. Unprefixed
// strings fall back to two defaults before defaultProvider: a
// "claude-" model id routes to Anthropic, and a "gpt-*"/"o*" model id
// routes to the OpenAICodex OAuth backend, matching how zdx treats a
// bare model id as "whatever OAuth session is already signed in".
func Resolve(modelString string, defaultProvider string) Resolution {
	for _, rule := range prefixTable {
		if strings.HasPrefix(modelString, rule.prefix) {
			rest := strings.TrimPrefix(modelString, rule.prefix)
			return withThinkingHint(rule.provider, rest)
		}
	}

	switch {
	case strings.HasPrefix(modelString, "claude-"):
		return withThinkingHint("anthropic", modelString)
	case openAICodexPattern.MatchString(modelString):
		return withThinkingHint("openaicodex", modelString)
	default:
		return withThinkingHint(defaultProvider, modelString)
	}
}

// IsMetaProvider reports whether provider routes through the model
// catalog instead of a single fixed client.
func IsMetaProvider(provider string) bool {
	return metaProviders[provider]
}

// withThinkingHint records a trailing "-thinking" or "-nothinking"
// suffix in ThinkingHint. It does not strip the suffix: Resolution.Model
// keeps the full string.
func withThinkingHint(provider, model string) Resolution {
	hint := ""
	switch {
	case strings.HasSuffix(model, "-nothinking"):
		hint = "nothinking"
	case strings.HasSuffix(model, "-thinking"):
		hint = "thinking"
	}
	return Resolution{Provider: provider, Model: model, ThinkingHint: hint}
}
