// Package store is the persisted field store backing the wizard. Every
// keyed slot maps to one piece of wizard state; writes flush to disk
// synchronously so a hard restart never loses more than the in-flight
// mutation.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// TokenKey holds the upstream bearer token. It survives a wizard reset.
const TokenKey = "token"

// Store is a key-value store persisted as a single JSON object on disk.
// All values are serialized JSON; a missing or unparseable value yields
// the caller's default, never an error.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]json.RawMessage
}

// Open loads the snapshot at path, creating parent directories as needed.
// A corrupt snapshot is logged and replaced by an empty store rather than
// failing startup.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	s := &Store{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read store snapshot: %w", err)
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		slog.Warn("store snapshot is corrupt, starting empty", "path", path, "error", err)
		s.values = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Get unmarshals the value at key into out. It reports false when the key
// is absent or the stored value does not parse into out.
func (s *Store) Get(key string, out any) bool {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("stored value does not parse, using default", "key", key, "error", err)
		return false
	}
	return true
}

// GetString returns the string at key, or def when absent or malformed.
func (s *Store) GetString(key, def string) string {
	var v string
	if !s.Get(key, &v) {
		return def
	}
	return v
}

// GetBool returns the bool at key, or false when absent or malformed.
func (s *Store) GetBool(key string) bool {
	var v bool
	s.Get(key, &v)
	return v
}

// GetInt returns the int at key, or def when absent or malformed.
func (s *Store) GetInt(key string, def int) int {
	var v int
	if !s.Get(key, &v) {
		return def
	}
	return v
}

// Set serializes v and writes it through to disk before returning.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return s.flushLocked()
}

// Remove deletes key and flushes. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// RemoveAll deletes every listed key in one flush.
func (s *Store) RemoveAll(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.flushLocked()
}

// Keys returns all stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flushLocked writes the snapshot atomically. Must be called with the
// write lock held.
func (s *Store) flushLocked() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to serialize store snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store snapshot: %w", err)
	}
	return nil
}
