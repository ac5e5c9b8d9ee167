package folder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customs-binder/backend/internal/models"
)

func fileWith(customs, bl string) *models.FileRecord {
	return &models.FileRecord{Customs: customs, BL: bl}
}

func TestAssignGroupKeys_CustomsWins(t *testing.T) {
	f := fileWith("11111-11-111111M", "BLCODE1234")
	assignGroupKeys([]*models.FileRecord{f})
	assert.Equal(t, "11111-11-111111M", f.GroupKey)
}

func TestAssignGroupKeys_BLInference(t *testing.T) {
	// A carries both identifiers, C only the BL: C inherits A's folder.
	a := fileWith("11111-11-111111M", "BLCODE1234")
	c := fileWith("", "BLCODE1234")
	assignGroupKeys([]*models.FileRecord{a, c})
	assert.Equal(t, "11111-11-111111M", c.GroupKey)
}

func TestAssignGroupKeys_AmbiguousBLUnclassified(t *testing.T) {
	a := fileWith("11111-11-111111M", "BLCODE1234")
	c := fileWith("", "BLCODE1234")
	assignGroupKeys([]*models.FileRecord{a, c})
	assert.Equal(t, "11111-11-111111M", c.GroupKey)

	// A second customs number appearing with the same BL makes the code
	// ambiguous, and the inference must be withdrawn.
	d := fileWith("22222-22-222222M", "BLCODE1234")
	assignGroupKeys([]*models.FileRecord{a, c, d})
	assert.Equal(t, models.GroupUnclassified, c.GroupKey)
	assert.Equal(t, "11111-11-111111M", a.GroupKey)
	assert.Equal(t, "22222-22-222222M", d.GroupKey)
}

func TestAssignGroupKeys_NoIdentifiers(t *testing.T) {
	f := fileWith("", "")
	assignGroupKeys([]*models.FileRecord{f})
	assert.Equal(t, models.GroupUnclassified, f.GroupKey)
}

func TestAssignGroupKeys_ManualPinSticks(t *testing.T) {
	f := fileWith("11111-11-111111M", "")
	f.GroupKey = "33333-33-333333M"
	f.ManualGroup = true
	assignGroupKeys([]*models.FileRecord{f})
	assert.Equal(t, "33333-33-333333M", f.GroupKey)
}
