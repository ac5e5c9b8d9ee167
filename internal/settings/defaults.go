// Package settings holds the persisted user preferences: the document-type
// precedence list, the customs-only-first toggle, and the per-folder side
// maps that survive a restart.
package settings

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/customs-binder/backend/internal/models"
)

// DefaultPrefixOrder is the built-in document-type precedence used until
// the operator configures their own.
func DefaultPrefixOrder() []models.PrefixEntry {
	return []models.PrefixEntry{
		{Prefix: "JS", DocumentName: "정산서"},
		{Prefix: "NB", DocumentName: "납부영수증"},
		{Prefix: "VT", DocumentName: "수입세금계산서"},
		{Prefix: "IMP", DocumentName: "수입신고필증"},
	}
}

// DefaultSettings returns a fresh settings blob with built-in defaults.
func DefaultSettings() *models.Settings {
	return &models.Settings{
		PrefixOrder:      DefaultPrefixOrder(),
		CustomsOnlyFirst: true,
		CompletedGroups:  map[string]bool{},
		FeeOrderMap:      map[string][]string{},
		FeeHiddenMap:     map[string][]string{},
		FeeManualMap:     map[string][]models.FeeLineItem{},
		FeeOverrideMap:   map[string]map[string]string{},
		ListOrderMap:     map[string][]string{},
		FeeAttachmentMap: map[string]map[string]string{},
	}
}

type orderFile struct {
	PrefixOrder      []models.PrefixEntry `yaml:"prefix_order"`
	CustomsOnlyFirst *bool                `yaml:"customs_only_first"`
}

// LoadDefaultOrder reads a site-wide precedence override from a YAML file.
// A missing file is not an error; the built-in defaults apply.
func LoadDefaultOrder(path string) ([]models.PrefixEntry, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPrefixOrder(), true, nil
		}
		return nil, false, err
	}
	defer f.Close()

	return parseOrderFile(f)
}

func parseOrderFile(r io.Reader) ([]models.PrefixEntry, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}

	var of orderFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return nil, false, err
	}

	order := NormalizePrefixOrder(of.PrefixOrder)
	if len(order) == 0 {
		order = DefaultPrefixOrder()
	}
	customsOnlyFirst := true
	if of.CustomsOnlyFirst != nil {
		customsOnlyFirst = *of.CustomsOnlyFirst
	}
	return order, customsOnlyFirst, nil
}

// NormalizePrefixOrder uppercases prefixes, drops empty entries, and fills
// a missing document name with the prefix itself.
func NormalizePrefixOrder(order []models.PrefixEntry) []models.PrefixEntry {
	out := make([]models.PrefixEntry, 0, len(order))
	for _, e := range order {
		prefix := strings.ToUpper(strings.TrimSpace(e.Prefix))
		if prefix == "" {
			continue
		}
		name := strings.TrimSpace(e.DocumentName)
		if name == "" {
			name = prefix
		}
		out = append(out, models.PrefixEntry{Prefix: prefix, DocumentName: name})
	}
	return out
}
