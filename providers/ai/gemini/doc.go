// Package gemini implements the [ai.Provider] and [ai.StreamProvider] interfaces
// for Google's Gemini generative language API.
//
// It handles request conversion from the generic [ai.ChatRequest] format to
// Gemini's generateContent wire format, response mapping back to [ai.ChatResponse],
// SSE-based streaming via the streamGenerateContent endpoint, a fixed capability
// set that is the same for every model, and token cost calculation. Costs use
// the standard (≤200k context) pricing tier; higher-context tiers are not applied.
//
// The primary entry point is [New], which reads GEMINI_API_KEY and
// GEMINI_API_BASE_URL from the environment. Use [GeminiProvider.WithAPIKey],
// [GeminiProvider.WithBaseURL], or [GeminiProvider.WithHttpClient] to configure
// the provider programmatically. Pricing is exposed through [ModelPricing],
// [GetModelCost], [CalculateCost], and [CalculateCostBreakdown].
package gemini
