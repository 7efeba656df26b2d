// Package modelscatalog fetches, caches, and parses the models.dev
// model/pricing catalog. zdx's meta-providers (zen, apiyi) consult it via
// Lookup to inherit an official provider's capabilities and per-token
// pricing for a given model id, since those gateways don't expose that
// metadata themselves.
package modelscatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultCatalogURL = "https://models.dev/api.json"

// CatalogURL resolves the models.dev endpoint, honoring the
// MODELS_DEV_URL override from spec §6.
func CatalogURL() string {
	if url := os.Getenv("MODELS_DEV_URL"); url != "" {
		return url
	}
	return defaultCatalogURL
}

// CachePath returns where the fetched catalog is cached on disk.
func CachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("modelscatalog: resolving config dir: %w", err)
	}
	return filepath.Join(dir, "zdx", "models.json"), nil
}

// Update fetches the current catalog and writes it to CachePath,
// returning the number of bytes written.
func Update(ctx context.Context, client *http.Client) (int, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CatalogURL(), nil)
	if err != nil {
		return 0, fmt.Errorf("modelscatalog: building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("modelscatalog: fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("modelscatalog: non-2xx status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("modelscatalog: reading response: %w", err)
	}
	if !json.Valid(body) {
		return 0, fmt.Errorf("modelscatalog: response is not valid JSON")
	}

	path, err := CachePath()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("modelscatalog: creating cache dir: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return 0, fmt.Errorf("modelscatalog: writing cache: %w", err)
	}

	return len(body), nil
}

// ModelInfo is the subset of a models.dev catalog entry zdx's
// meta-provider resolution and cost accounting need.
type ModelInfo struct {
	ID       string
	Provider string // official provider slug the model is listed under, e.g. "anthropic"

	Reasoning  bool
	ToolCall   bool
	Attachment bool // supports image/file input

	InputCostPerMillion      float64
	OutputCostPerMillion     float64
	CacheReadCostPerMillion  float64
	CacheWriteCostPerMillion float64
}

// catalogFile mirrors the models.dev api.json layout: a map of provider
// slug to provider entry, each holding its own map of model id to model
// entry. Fields absent from a given provider's JSON just decode to zero
// values.
type catalogFile map[string]struct {
	Models map[string]struct {
		Reasoning  bool `json:"reasoning"`
		ToolCall   bool `json:"tool_call"`
		Attachment bool `json:"attachment"`
		Cost       struct {
			Input      float64 `json:"input"`
			Output     float64 `json:"output"`
			CacheRead  float64 `json:"cache_read"`
			CacheWrite float64 `json:"cache_write"`
		} `json:"cost"`
	} `json:"models"`
}

// Catalog is a parsed, in-memory models.dev catalog ready for Lookup.
type Catalog struct {
	byModel map[string]ModelInfo
}

// Load reads and parses the catalog cached by Update. Callers should
// treat a non-nil error ("models update" was never run, or the cache is
// stale/corrupt) as "no catalog available" and fall back to their own
// defaults rather than failing the caller's request.
func Load() (*Catalog, error) {
	path, err := CachePath()
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelscatalog: reading cache: %w", err)
	}

	var raw catalogFile
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("modelscatalog: parsing cache: %w", err)
	}

	catalog := &Catalog{byModel: make(map[string]ModelInfo, len(raw))}
	for providerSlug, providerEntry := range raw {
		for modelID, model := range providerEntry.Models {
			catalog.byModel[modelID] = ModelInfo{
				ID:                       modelID,
				Provider:                 providerSlug,
				Reasoning:                model.Reasoning,
				ToolCall:                 model.ToolCall,
				Attachment:               model.Attachment,
				InputCostPerMillion:      model.Cost.Input,
				OutputCostPerMillion:     model.Cost.Output,
				CacheReadCostPerMillion:  model.Cost.CacheRead,
				CacheWriteCostPerMillion: model.Cost.CacheWrite,
			}
		}
	}
	return catalog, nil
}

// Lookup finds modelID's catalog entry. It tries the id as given first,
// then its final "/"-separated segment, since a meta-provider like zen
// or apiyi routes bare ids (e.g. "claude-opus-4") that models.dev often
// lists under a provider-qualified key ("anthropic/claude-opus-4" in
// some catalog snapshots).
func (c *Catalog) Lookup(modelID string) (ModelInfo, bool) {
	if info, ok := c.byModel[modelID]; ok {
		return info, true
	}
	if idx := strings.LastIndex(modelID, "/"); idx >= 0 && idx+1 < len(modelID) {
		if info, ok := c.byModel[modelID[idx+1:]]; ok {
			return info, true
		}
	}
	return ModelInfo{}, false
}
