package folder

import "github.com/customs-binder/backend/internal/models"

// buildBLMap maps every BL code to the customs number it implies, scanning
// the whole file set. A BL seen alongside two different customs numbers maps
// to "" so that no inference is drawn from it.
func buildBLMap(files []*models.FileRecord) map[string]string {
	m := make(map[string]string)
	for _, f := range files {
		if f.Customs == "" || f.BL == "" {
			continue
		}
		if existing, ok := m[f.BL]; !ok {
			m[f.BL] = f.Customs
		} else if existing != f.Customs {
			m[f.BL] = ""
		}
	}
	return m
}

// assignGroupKeys resolves each record's folder. The BL map must be built
// from the complete current set first, because adding or removing a single
// file can flip a BL from unambiguous to conflicting and back. Manually
// pinned records keep their folder.
func assignGroupKeys(files []*models.FileRecord) {
	blMap := buildBLMap(files)
	for _, f := range files {
		if f.ManualGroup && f.GroupKey != "" {
			continue
		}
		if f.Customs != "" {
			f.GroupKey = f.Customs
			continue
		}
		if f.BL != "" {
			if customs := blMap[f.BL]; customs != "" {
				f.GroupKey = customs
				continue
			}
		}
		f.GroupKey = models.GroupUnclassified
	}
}
