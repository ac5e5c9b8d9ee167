// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/customs-binder/backend/internal/models"
	"github.com/customs-binder/backend/internal/storage"
)

// MockStorage implements storage.Store for testing
type MockStorage struct {
	mu      sync.RWMutex
	uploads map[string][]byte
	merged  map[string][]byte
	infos   map[string]*models.StoredFile
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		uploads: make(map[string][]byte),
		merged:  make(map[string][]byte),
		infos:   make(map[string]*models.StoredFile),
	}
}

func (m *MockStorage) SaveUpload(name string, r io.Reader) (*models.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	safe := storage.SafeFileName(name)
	info := &models.StoredFile{
		Name:         safe,
		OriginalName: safe,
		Size:         int64(len(data)),
		SavedAt:      time.Now(),
	}
	m.uploads[safe] = data
	m.infos[safe] = info
	return info, nil
}

func (m *MockStorage) ListUploads() ([]*models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.StoredFile
	for name := range m.uploads {
		list = append(list, m.infos[name])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockStorage) UploadPath(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.uploads[name]; !ok {
		return "", errors.New("upload not found")
	}
	return "/mock/uploads/" + name, nil
}

func (m *MockStorage) DeleteUploads(names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		delete(m.uploads, name)
		delete(m.infos, name)
	}
	return nil
}

func (m *MockStorage) ClearUploads() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = make(map[string][]byte)
	m.infos = make(map[string]*models.StoredFile)
	return nil
}

func (m *MockStorage) SaveMerged(name string, r io.Reader) (*models.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	safe := storage.SafeFileName(name)
	m.merged[safe] = data
	return &models.StoredFile{
		Name:         safe,
		OriginalName: safe,
		Size:         int64(len(data)),
		SavedAt:      time.Now(),
	}, nil
}

func (m *MockStorage) ListMerged() ([]*models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.StoredFile
	for name, data := range m.merged {
		list = append(list, &models.StoredFile{Name: name, Size: int64(len(data))})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockStorage) MergedPath(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.merged[name]; !ok {
		return "", errors.New("merged file not found")
	}
	return "/mock/merged/" + name, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// UploadCount returns the number of stored uploads
func (m *MockStorage) UploadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploads)
}

// UploadData returns a stored upload's content
func (m *MockStorage) UploadData(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.uploads[name]
	return data, ok
}
