package classify

import "github.com/customs-binder/backend/internal/models"

// Ruleset captures the ordering configuration in effect when a file is
// inserted into a folder listing.
type Ruleset struct {
	Order            []models.PrefixEntry
	CustomsOnlyFirst bool
}

// PrefixIndex returns the position of a prefix in the configured order,
// or -1 when it is not listed.
func (r Ruleset) PrefixIndex(prefix string) int {
	for i, entry := range r.Order {
		if entry.Prefix == prefix {
			return i
		}
	}
	return -1
}

// DocumentName returns the configured label for a prefix, falling back to
// the prefix itself.
func (r Ruleset) DocumentName(prefix string) string {
	for _, entry := range r.Order {
		if entry.Prefix == prefix && entry.DocumentName != "" {
			return entry.DocumentName
		}
	}
	return prefix
}

// Rank computes a file's sort rank. Customs-only filenames rank -1 when the
// setting is on, sorting before every prefixed document. Unlisted prefixes
// rank after every listed one.
func (r Ruleset) Rank(rec *models.FileRecord) int {
	if r.CustomsOnlyFirst && IsCustomsOnly(rec.Name) {
		return -1
	}
	idx := r.PrefixIndex(rec.Prefix)
	if idx == -1 {
		return len(r.Order)
	}
	return idx
}

// Less orders two files by rank, then by insertion sequence. It is only
// consulted to pick the insertion point of a newly added file; existing
// orders are never re-sorted wholesale, so manual rearrangement survives.
func (r Ruleset) Less(a, b *models.FileRecord) bool {
	rankA, rankB := r.Rank(a), r.Rank(b)
	if rankA != rankB {
		return rankA < rankB
	}
	return a.AddedIndex < b.AddedIndex
}
