// Package credstore persists provider credentials (API keys and OAuth
// token sets) to a single JSON file under the user's config directory,
// with proactive refresh and atomic, permission-restricted writes.
//
// The record shape and the refresh-with-safety-margin behavior follow
// the OAuth credential cache used by the reference CLI this module
// reimplements; the storage mechanics (atomic temp-file-plus-rename,
// 0600 permissions, in-process RWMutex cache) follow the concurrency
// and filesystem idioms used elsewhere in this codebase for small
// local state files.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// expirySafetyMargin is subtracted from a credential's expiry time before
// comparing it against "now", so a refresh is triggered before the
// upstream actually rejects the token.
const expirySafetyMargin = 5 * time.Minute

// Type identifies the shape of a stored credential record.
type Type string

const (
	TypeAPIKey Type = "api_key"
	TypeOAuth  Type = "oauth"
)

// Credential is a single provider's stored authentication material.
type Credential struct {
	Type      Type   `json:"type"`
	APIKey    string `json:"api_key,omitempty"`
	Access    string `json:"access,omitempty"`
	Refresh   string `json:"refresh,omitempty"`
	ExpiresMs int64  `json:"expires_ms,omitempty"` // unix millis
	AccountID string `json:"account_id,omitempty"` // OAuth subject / project id, provider-specific
}

// IsExpired reports whether an OAuth credential is expired or will expire
// within the safety margin. API-key credentials never expire.
func (c Credential) IsExpired(now time.Time) bool {
	if c.Type != TypeOAuth || c.ExpiresMs == 0 {
		return false
	}
	expiry := time.UnixMilli(c.ExpiresMs)
	return now.Add(expirySafetyMargin).After(expiry)
}

// RefreshFunc exchanges a refresh token for a new Credential. Providers
// register one per OAuth-capable backend.
type RefreshFunc func(refreshToken string) (Credential, error)

// Store is a thread-safe, file-backed credential cache keyed by provider
// name.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]Credential
}

// Open loads (or lazily initializes) the credential store at path. A
// missing file is not an error; it is treated as an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]Credential{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("credstore: reading %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("credstore: parsing %s: %w", path, err)
	}
	return s, nil
}

// DefaultPath returns credentials.json under the zdx config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("credstore: resolving config dir: %w", err)
	}
	return filepath.Join(dir, "zdx", "credentials.json"), nil
}

// Get returns the stored credential for provider, if any.
func (s *Store) Get(provider string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[provider]
	return c, ok
}

// Set stores (or replaces) the credential for provider and persists the
// store atomically.
func (s *Store) Set(provider string, c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[provider] = c
	return s.saveLocked()
}

// Remove deletes the credential for provider, if present, and persists
// the store.
func (s *Store) Remove(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[provider]; !ok {
		return nil
	}
	delete(s.data, provider)
	return s.saveLocked()
}

// Resolve returns a valid access token for an OAuth credential, calling
// refresh and persisting the result if the cached token has expired
// within the safety margin. For API-key credentials it returns the key
// unchanged.
func (s *Store) Resolve(provider string, refresh RefreshFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data[provider]
	if !ok {
		return "", fmt.Errorf("credstore: no credentials for %q, run `zdx login %s`", provider, provider)
	}
	if c.Type == TypeAPIKey {
		return c.APIKey, nil
	}
	if !c.IsExpired(time.Now()) {
		return c.Access, nil
	}
	if refresh == nil {
		return "", fmt.Errorf("credstore: credentials for %q expired and no refresh available, run `zdx login %s` again", provider, provider)
	}
	refreshed, err := refresh(c.Refresh)
	if err != nil {
		return "", fmt.Errorf("credstore: refreshing %q credentials: %w; run `zdx login %s` again", provider, err, provider)
	}
	s.data[provider] = refreshed
	if err := s.saveLocked(); err != nil {
		return "", err
	}
	return refreshed.Access, nil
}

// saveLocked writes the store to disk via a temp-file-plus-rename swap
// so a crash mid-write never leaves a truncated credentials file, with
// 0600 permissions since the file holds secrets.
func (s *Store) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("credstore: creating %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: marshaling: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("credstore: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("credstore: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("credstore: renaming into place: %w", err)
	}
	return nil
}
