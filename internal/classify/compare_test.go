package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customs-binder/backend/internal/models"
)

func testRuleset() Ruleset {
	return Ruleset{
		Order: []models.PrefixEntry{
			{Prefix: "JS", DocumentName: "정산서"},
			{Prefix: "NB", DocumentName: "납부영수증"},
			{Prefix: "VT", DocumentName: "수입세금계산서"},
			{Prefix: "IMP", DocumentName: "수입신고필증"},
		},
		CustomsOnlyFirst: true,
	}
}

func rec(name string, added int) *models.FileRecord {
	return &models.FileRecord{
		Name:       name,
		Prefix:     ExtractPrefix(name),
		AddedIndex: added,
	}
}

func TestRuleset_Rank(t *testing.T) {
	r := testRuleset()

	assert.Equal(t, -1, r.Rank(rec("12345-67-890123M.pdf", 1)))
	assert.Equal(t, 0, r.Rank(rec("JS_12345-67-890123M.pdf", 1)))
	assert.Equal(t, 3, r.Rank(rec("IMP_12345-67-890123M.pdf", 1)))
	// Unknown prefix sorts after everything listed.
	assert.Equal(t, len(r.Order), r.Rank(rec("송장_12345-67-890123M.pdf", 1)))
}

func TestRuleset_Rank_CustomsOnlyToggle(t *testing.T) {
	r := testRuleset()
	r.CustomsOnlyFirst = false

	// With the toggle off a bare declaration number has no prefix and
	// falls to the back of the folder.
	assert.Equal(t, len(r.Order), r.Rank(rec("12345-67-890123M.pdf", 1)))
}

func TestRuleset_Less(t *testing.T) {
	r := testRuleset()

	plain := rec("12345-67-890123M.pdf", 3)
	js := rec("JS_12345-67-890123M.pdf", 2)
	vt := rec("VT_12345-67-890123M.pdf", 1)

	assert.True(t, r.Less(plain, js))
	assert.True(t, r.Less(js, vt))
	assert.True(t, r.Less(plain, vt))

	// Equal ranks fall back to insertion order.
	jsLater := rec("JS_98765-43-210987M.pdf", 9)
	assert.True(t, r.Less(js, jsLater))
	assert.False(t, r.Less(jsLater, js))
}

func TestRuleset_DocumentName(t *testing.T) {
	r := testRuleset()
	assert.Equal(t, "정산서", r.DocumentName("JS"))
	assert.Equal(t, "XX", r.DocumentName("XX"))
}
