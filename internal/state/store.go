// Package state holds the wizard's configuration state: a flat map of
// dot-delimited paths ("stepper.x.run_current") to string values, persisted
// as a JSON file and snapshotted into named backups.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const stateFileName = "state.json"

// Store is a thread-safe key-value store over dot-delimited paths. Every
// mutation persists synchronously; the state file is small.
type Store struct {
	mu         sync.RWMutex
	path       string
	backupsDir string
	values     map[string]string
}

// NewStore loads (or initializes) the state file under dataDir.
func NewStore(dataDir string) (*Store, error) {
	s := &Store{
		path:       filepath.Join(dataDir, stateFileName),
		backupsDir: filepath.Join(dataDir, "backups"),
		values:     make(map[string]string),
	}
	if err := os.MkdirAll(s.backupsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backups directory: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	return s, nil
}

// Get returns the value at key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetBool interprets the value at key as a boolean; absent or unparseable
// values are false.
func (s *Store) GetBool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	return err == nil && b
}

// GetInt interprets the value at key as an integer, with a default.
func (s *Store) GetInt(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Set stores one value and persists.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.persistLocked()
}

// SetMany stores several values in one persist.
func (s *Store) SetMany(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return s.persistLocked()
}

// Delete removes one key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.persistLocked()
}

// DeletePrefix removes every key under the given dot-path prefix and returns
// how many were removed.
func (s *Store) DeletePrefix(prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k := range s.values {
		if k == prefix || strings.HasPrefix(k, prefix+".") {
			delete(s.values, k)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked()
}

// Keys returns the sorted keys under a dot-path prefix; an empty prefix
// returns every key.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		if prefix == "" || k == prefix || strings.HasPrefix(k, prefix+".") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of the whole state map.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Replace swaps the entire state map and persists. Used by backup restore.
func (s *Store) Replace(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string, len(values))
	for k, v := range values {
		s.values[k] = v
	}
	return s.persistLocked()
}

// persistLocked writes the state file atomically (temp file + rename).
// Callers hold the write lock.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
