package feeinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/customs-binder/backend/internal/models"
)

// Service extracts fee metadata from stored invoice PDFs. Results are
// cached per stored filename so repeated lookups do not reparse the PDF.
type Service struct {
	mu      sync.Mutex
	tempDir string
	cache   map[string]*models.FeeInfo
}

// NewService creates a Service using tempDir for pdfcpu scratch output.
func NewService(tempDir string) *Service {
	return &Service{
		tempDir: tempDir,
		cache:   make(map[string]*models.FeeInfo),
	}
}

// Lookup returns the fee metadata for a stored invoice, extracting it on
// first use. A nil result means the PDF yielded nothing usable.
func (s *Service) Lookup(name, path string) *models.FeeInfo {
	s.mu.Lock()
	if info, ok := s.cache[name]; ok {
		s.mu.Unlock()
		return info
	}
	s.mu.Unlock()

	var info *models.FeeInfo
	text, err := s.extractText(path)
	if err != nil {
		fmt.Printf("[feeinfo] extraction failed for %s: %v\n", name, err)
	} else {
		info = ParseFeeText(text)
	}

	s.mu.Lock()
	s.cache[name] = info
	s.mu.Unlock()
	return info
}

// Invalidate drops cached results for the named files.
func (s *Service) Invalidate(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.cache, name)
	}
}

var reLiteralString = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

// extractText pulls the page content streams out of the PDF and collects
// their literal strings. Invoices from the payment portal embed their text
// as plain literals, which is all the parser needs.
func (s *Service) extractText(path string) (string, error) {
	outDir, err := os.MkdirTemp(s.tempDir, "feeinfo-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extracting content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("reading scratch dir: %w", err)
	}

	var sb strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			continue
		}
		for _, m := range reLiteralString.FindAllSubmatch(data, -1) {
			sb.Write(unescapeLiteral(m[1]))
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func unescapeLiteral(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			i++
			switch b[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, b[i])
			}
			continue
		}
		out = append(out, b[i])
	}
	return out
}
