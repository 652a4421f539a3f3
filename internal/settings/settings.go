// Package settings persists the three credential strings as one named
// local record: loaded at startup, overwritten wholesale on every save.
package settings

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "settings.json"

// Settings is the single persisted credential record.
type Settings struct {
	GeminiAPIKey     string `json:"gemini_api_key"`
	NotionAPIKey     string `json:"notion_api_key"`
	NotionDatabaseID string `json:"notion_database_id"`
}

// Store owns the on-disk record and a single in-memory cache of it.
type Store struct {
	path string

	mu     sync.Mutex
	cached Settings
	loaded bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the record under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blogsmith", fileName), nil
}

// Load returns the cached record, reading the file on first use.
// Corrupt or unreadable data is logged and replaced by empty
// credentials; startup never fails on a bad settings file.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached
	}
	s.loaded = true
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("settings: read %s failed: %v", s.path, err)
		}
		return s.cached
	}
	var parsed Settings
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("settings: corrupt record at %s, falling back to empty credentials: %v", s.path, err)
		return s.cached
	}
	s.cached = parsed
	return s.cached
}

// Save overwrites the whole record and the cache with next.
func (s *Store) Save(next Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return err
	}
	s.cached = next
	s.loaded = true
	return nil
}
