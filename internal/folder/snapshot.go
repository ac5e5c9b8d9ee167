package folder

import (
	"sort"

	"github.com/customs-binder/backend/internal/models"
)

// Snapshot renders the full binder state for clients. Folders come out
// sorted by key with the unclassified folder last; each folder carries its
// files in display order, the visible fee items, the composite order, and
// the BL/importer summary (shown only when every member agrees).
func (s *Store) Snapshot() *models.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.groupOrder))
	for key := range s.groupOrder {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == models.GroupUnclassified {
			return false
		}
		if keys[j] == models.GroupUnclassified {
			return true
		}
		return keys[i] < keys[j]
	})

	view := &models.StateView{
		Folders:          make([]models.FolderView, 0, len(keys)),
		FileCount:        len(s.files),
		PrefixOrder:      append([]models.PrefixEntry(nil), s.rules.Order...),
		CustomsOnlyFirst: s.rules.CustomsOnlyFirst,
	}

	for _, key := range keys {
		members := s.groupFilesLocked(key)
		files := make([]models.FileRecord, 0, len(members))
		var total int64
		bl, importer := "", ""
		blMixed, importerMixed := false, false
		for _, f := range members {
			files = append(files, *f)
			total += f.Size
			if f.BL != "" {
				if bl == "" {
					bl = f.BL
				} else if bl != f.BL {
					blMixed = true
				}
			}
			if f.Importer != "" {
				if importer == "" {
					importer = f.Importer
				} else if importer != f.Importer {
					importerMixed = true
				}
			}
		}
		if blMixed {
			bl = ""
		}
		if importerMixed {
			importer = models.GroupImporterMixed
		}
		view.Folders = append(view.Folders, models.FolderView{
			Key:       key,
			Files:     files,
			Fees:      append([]models.FeeLineItem(nil), s.feeItems[key]...),
			Order:     append([]string(nil), s.listOrder[key]...),
			BL:        bl,
			Importer:  importer,
			Completed: s.completed[key],
			TotalSize: total,
		})
	}
	return view
}
