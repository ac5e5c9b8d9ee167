package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/customs-binder/backend/internal/models"
)

const fileName = "settings.msgpack"

// FileStore persists the settings blob as msgpack in the data directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated blob behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore under dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, fileName)}, nil
}

// Exists reports whether a persisted blob is on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the persisted settings. A missing or unreadable blob yields
// the defaults; the binder must come up even when the file is gone.
func (s *FileStore) Load() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return DefaultSettings()
	}

	var set models.Settings
	if err := msgpack.Unmarshal(data, &set); err != nil {
		fmt.Printf("[settings] discarding corrupt blob %s: %v\n", s.path, err)
		return DefaultSettings()
	}
	if len(set.PrefixOrder) == 0 {
		set.PrefixOrder = DefaultPrefixOrder()
	}
	return &set
}

// Save persists the settings blob atomically.
func (s *FileStore) Save(set *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := msgpack.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
