package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), filepath.Join(dir, "merged"))
	require.NoError(t, err)
	return s
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "a_b_c.pdf", SafeFileName(`a/b\c.pdf`))
	assert.Equal(t, "what_.pdf", SafeFileName(`what?.pdf`))
	assert.Equal(t, "JS_12345-67-890123M.pdf", SafeFileName("JS_12345-67-890123M.pdf"))
}

func TestLocalStore_SaveUpload(t *testing.T) {
	s := newTestStore(t)

	info, err := s.SaveUpload("JS_12345-67-890123M.pdf", strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "JS_12345-67-890123M.pdf", info.Name)
	assert.Equal(t, int64(13), info.Size)

	path, err := s.UploadPath(info.Name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestLocalStore_SaveUploadCollision(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveUpload("doc.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.SaveUpload("doc.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", first.Name)
	assert.Equal(t, "doc_1.pdf", second.Name)
	// The original is untouched.
	path, _ := s.UploadPath("doc.pdf")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "one", string(data))
}

func TestLocalStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.SaveUpload("a.pdf", strings.NewReader("a"))
	b, _ := s.SaveUpload("b.pdf", strings.NewReader("b"))

	require.NoError(t, s.DeleteUploads([]string{a.Name, "missing.pdf"}))
	list, err := s.ListUploads()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.Name, list[0].Name)

	require.NoError(t, s.ClearUploads())
	list, _ = s.ListUploads()
	assert.Empty(t, list)

	_, err = s.UploadPath(b.Name)
	assert.Error(t, err)
}

func TestLocalStore_RescanOnStartup(t *testing.T) {
	dir := t.TempDir()
	uploadDir := filepath.Join(dir, "uploads")
	mergedDir := filepath.Join(dir, "merged")

	s, err := NewLocalStore(uploadDir, mergedDir)
	require.NoError(t, err)
	_, err = s.SaveUpload("survivor.pdf", strings.NewReader("data"))
	require.NoError(t, err)
	_, err = s.SaveMerged("250101_group.pdf", strings.NewReader("merged"))
	require.NoError(t, err)

	// A second store over the same directories sees the files.
	s2, err := NewLocalStore(uploadDir, mergedDir)
	require.NoError(t, err)

	uploads, err := s2.ListUploads()
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "survivor.pdf", uploads[0].Name)

	merged, err := s2.ListMerged()
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "250101_group.pdf", merged[0].Name)
}

func TestLocalStore_SaveMergedOverwrites(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveMerged("out.pdf", strings.NewReader("v1"))
	require.NoError(t, err)
	_, err = s.SaveMerged("out.pdf", strings.NewReader("v2"))
	require.NoError(t, err)

	path, err := s.MergedPath("out.pdf")
	require.NoError(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "v2", string(data))
}
