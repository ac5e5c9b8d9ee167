// Package merge produces the final shipment PDFs: one merged file per
// folder, in the folder's display order, plus the batch mode that merges
// several folders concurrently and zips the results.
package merge

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/customs-binder/backend/internal/storage"
)

// Merger runs pdfcpu merges in a scratch directory.
type Merger struct {
	tempDir string
}

// NewMerger creates a Merger. The scratch directory is created if needed.
func NewMerger(tempDir string) (*Merger, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return &Merger{tempDir: tempDir}, nil
}

func mergeConfig() *model.Configuration {
	// Scanned customs documents are frequently malformed; relaxed
	// validation keeps pdfcpu from rejecting them outright.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// MergedName builds the conventional output name: YYMMDD_<group>.pdf.
func MergedName(groupKey string, now time.Time) string {
	return storage.SafeFileName(fmt.Sprintf("%s_%s.pdf", now.Format("060102"), groupKey))
}

// MergeFiles merges the given PDFs, in order, into one output file inside
// the scratch directory and returns its path.
func (m *Merger) MergeFiles(paths []string, outName string) (string, error) {
	if len(paths) < 2 {
		return "", fmt.Errorf("merge needs at least 2 files, got %d", len(paths))
	}
	outPath := filepath.Join(m.tempDir, storage.SafeFileName(outName))
	if err := api.MergeCreateFile(paths, outPath, false, mergeConfig()); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("merging %d files: %w", len(paths), err)
	}
	return outPath, nil
}

// Manifest describes a batch merge request: the files the client holds and
// how they are grouped.
type Manifest struct {
	FileIDs []string        `json:"fileIds"`
	Groups  []ManifestGroup `json:"groups"`
}

// ManifestGroup is one output PDF of a batch merge.
type ManifestGroup struct {
	Name    string   `json:"name"`
	FileIDs []string `json:"fileIds"`
}

// Validate rejects manifests that cannot produce a sensible batch.
func (mf *Manifest) Validate() error {
	if len(mf.Groups) == 0 {
		return fmt.Errorf("manifest has no groups")
	}
	known := make(map[string]bool, len(mf.FileIDs))
	for _, id := range mf.FileIDs {
		known[id] = true
	}
	total := 0
	for _, g := range mf.Groups {
		if g.Name == "" {
			return fmt.Errorf("manifest group without a name")
		}
		if len(g.FileIDs) == 0 {
			return fmt.Errorf("manifest group %q has no files", g.Name)
		}
		for _, id := range g.FileIDs {
			if len(known) > 0 && !known[id] {
				return fmt.Errorf("manifest group %q references unknown file %s", g.Name, id)
			}
		}
		total += len(g.FileIDs)
	}
	if len(known) > 0 && total != len(known) {
		return fmt.Errorf("manifest groups cover %d files, expected %d", total, len(known))
	}
	return nil
}

// BatchResult is one merged output of MergeBatch.
type BatchResult struct {
	Name string
	Path string
}

// MergeBatch merges every group concurrently, each into its own temp file.
// Single-file groups are copied through unchanged. Results come back in
// manifest order.
func (m *Merger) MergeBatch(groups []ManifestGroup, resolve func(id string) (string, error), now time.Time) ([]BatchResult, error) {
	results := make([]BatchResult, len(groups))

	var eg errgroup.Group
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			paths := make([]string, 0, len(g.FileIDs))
			for _, id := range g.FileIDs {
				p, err := resolve(id)
				if err != nil {
					return fmt.Errorf("group %q: %w", g.Name, err)
				}
				paths = append(paths, p)
			}
			outName := MergedName(g.Name, now)
			var outPath string
			var err error
			if len(paths) == 1 {
				outPath, err = m.copyThrough(paths[0], outName)
			} else {
				outPath, err = m.MergeFiles(paths, outName)
			}
			if err != nil {
				return err
			}
			results[i] = BatchResult{Name: outName, Path: outPath}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		for _, r := range results {
			if r.Path != "" {
				os.Remove(r.Path)
			}
		}
		return nil, err
	}
	return results, nil
}

func (m *Merger) copyThrough(src, outName string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	outPath := filepath.Join(m.tempDir, storage.SafeFileName(outName))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	return outPath, nil
}

// WriteZip streams the batch results into a zip archive.
func WriteZip(w io.Writer, results []BatchResult) error {
	zw := zip.NewWriter(w)
	for _, r := range results {
		f, err := os.Open(r.Path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", r.Path, err)
		}
		entry, err := zw.Create(r.Name)
		if err != nil {
			f.Close()
			return fmt.Errorf("adding %s to archive: %w", r.Name, err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s to archive: %w", r.Name, err)
		}
		f.Close()
	}
	return zw.Close()
}

// Cleanup removes the batch's temp files.
func Cleanup(results []BatchResult) {
	for _, r := range results {
		os.Remove(r.Path)
	}
}
