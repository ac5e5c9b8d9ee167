package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/customs-binder/backend/internal/models"
)

// Store defines the interface for upload and merged-output storage. Files
// are kept under their (sanitized) original names because classification
// reads the identifiers straight out of the filename.
type Store interface {
	SaveUpload(name string, r io.Reader) (*models.StoredFile, error)
	ListUploads() ([]*models.StoredFile, error)
	UploadPath(name string) (string, error)
	DeleteUploads(names []string) error
	ClearUploads() error
	SaveMerged(name string, r io.Reader) (*models.StoredFile, error)
	ListMerged() ([]*models.StoredFile, error)
	MergedPath(name string) (string, error)
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SafeFileName replaces characters Windows and most browsers reject in a
// filename with underscores.
func SafeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// LocalStore implements Store on the local filesystem. Both directories
// are scanned on startup so a restarted server picks up existing files.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	mergedDir string
	uploads   map[string]*models.StoredFile
	merged    map[string]*models.StoredFile
}

// NewLocalStore creates a LocalStore over the two directories.
func NewLocalStore(uploadDir, mergedDir string) (*LocalStore, error) {
	for _, dir := range []string{uploadDir, mergedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	s := &LocalStore{
		uploadDir: uploadDir,
		mergedDir: mergedDir,
		uploads:   make(map[string]*models.StoredFile),
		merged:    make(map[string]*models.StoredFile),
	}
	if err := scanDir(uploadDir, s.uploads); err != nil {
		return nil, err
	}
	if err := scanDir(mergedDir, s.merged); err != nil {
		return nil, err
	}
	return s, nil
}

func scanDir(dir string, into map[string]*models.StoredFile) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		into[e.Name()] = &models.StoredFile{
			Name:         e.Name(),
			OriginalName: e.Name(),
			Size:         info.Size(),
			SavedAt:      info.ModTime(),
		}
	}
	return nil
}

// SaveUpload writes an uploaded file under its sanitized original name.
// A name collision gets a numeric suffix before the extension so two
// uploads never clobber each other.
func (s *LocalStore) SaveUpload(name string, r io.Reader) (*models.StoredFile, error) {
	safe := SafeFileName(name)

	s.mu.Lock()
	stored := safe
	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)
	for n := 1; ; n++ {
		if _, taken := s.uploads[stored]; !taken {
			break
		}
		stored = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	// Reserve the slot before releasing the lock for the disk write.
	s.uploads[stored] = &models.StoredFile{Name: stored, OriginalName: safe}
	s.mu.Unlock()

	path := filepath.Join(s.uploadDir, stored)
	size, err := writeFile(path, r)
	if err != nil {
		s.mu.Lock()
		delete(s.uploads, stored)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	info := &models.StoredFile{
		Name:         stored,
		OriginalName: safe,
		Size:         size,
		SavedAt:      time.Now(),
	}
	s.uploads[stored] = info
	return info, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("writing file: %w", err)
	}
	return size, nil
}

// ListUploads returns all stored uploads sorted by save time.
func (s *LocalStore) ListUploads() ([]*models.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedList(s.uploads), nil
}

// UploadPath returns the absolute path of a stored upload.
func (s *LocalStore) UploadPath(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.uploads[name]; !ok {
		return "", fmt.Errorf("upload not found: %s", name)
	}
	return filepath.Join(s.uploadDir, name), nil
}

// DeleteUploads removes the named uploads. Missing names are ignored.
func (s *LocalStore) DeleteUploads(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if _, ok := s.uploads[name]; !ok {
			continue
		}
		path := filepath.Join(s.uploadDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting upload: %w", err)
		}
		delete(s.uploads, name)
	}
	return nil
}

// ClearUploads removes every stored upload.
func (s *LocalStore) ClearUploads() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.uploads {
		path := filepath.Join(s.uploadDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting upload: %w", err)
		}
		delete(s.uploads, name)
	}
	return nil
}

// SaveMerged archives a merged output under the given name, overwriting
// any previous file of the same name.
func (s *LocalStore) SaveMerged(name string, r io.Reader) (*models.StoredFile, error) {
	safe := SafeFileName(name)
	path := filepath.Join(s.mergedDir, safe)

	size, err := writeFile(path, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	info := &models.StoredFile{
		Name:         safe,
		OriginalName: safe,
		Size:         size,
		SavedAt:      time.Now(),
	}
	s.merged[safe] = info
	return info, nil
}

// ListMerged returns the archived merge outputs sorted by save time.
func (s *LocalStore) ListMerged() ([]*models.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedList(s.merged), nil
}

// MergedPath returns the absolute path of an archived merge output.
func (s *LocalStore) MergedPath(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.merged[name]; !ok {
		return "", fmt.Errorf("merged file not found: %s", name)
	}
	return filepath.Join(s.mergedDir, name), nil
}

func sortedList(m map[string]*models.StoredFile) []*models.StoredFile {
	var list []*models.StoredFile
	for _, info := range m {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SavedAt.Equal(list[j].SavedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].SavedAt.Before(list[j].SavedAt)
	})
	return list
}
