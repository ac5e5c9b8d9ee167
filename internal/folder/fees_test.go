package folder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customs-binder/backend/internal/models"
)

func feeFile(fees ...models.FeeMetadata) *models.FileRecord {
	return &models.FileRecord{Fees: fees}
}

func TestBuildFeeItems_DerivesAndDedups(t *testing.T) {
	duty := models.FeeMetadata{Name: "관세", Amount: "120,000"}
	vat := models.FeeMetadata{Name: "부가가치세", Amount: "250,000"}

	items, order := buildFeeItems(
		[]*models.FileRecord{feeFile(duty, vat), feeFile(duty)},
		nil, nil, nil, nil)

	assert.Len(t, items, 2)
	assert.Equal(t, "관세", items[0].Name)
	assert.Equal(t, "부가가치세", items[1].Name)
	assert.Equal(t, []string{feeKeyOf(duty), feeKeyOf(vat)}, order)
	assert.False(t, items[0].Manual)
}

func TestBuildFeeItems_ManualAppended(t *testing.T) {
	duty := models.FeeMetadata{Name: "관세", Amount: "120,000"}
	manual := models.FeeLineItem{Key: "manual:abc", Name: "기타비용"}

	items, _ := buildFeeItems(
		[]*models.FileRecord{feeFile(duty)},
		[]models.FeeLineItem{manual}, nil, nil, nil)

	assert.Len(t, items, 2)
	assert.Equal(t, "기타비용", items[1].Name)
	assert.True(t, items[1].Manual)
}

func TestBuildFeeItems_HiddenStaysHidden(t *testing.T) {
	duty := models.FeeMetadata{Name: "관세", Amount: "120,000"}
	hidden := map[string]bool{feeKeyOf(duty): true}

	// A hidden item disappears now and stays gone on every rebuild, even
	// though its metadata is still present on the file.
	for i := 0; i < 3; i++ {
		items, order := buildFeeItems([]*models.FileRecord{feeFile(duty)}, nil, hidden, nil, nil)
		assert.Empty(t, items)
		assert.Empty(t, order)
	}
}

func TestBuildFeeItems_OverrideRenamesDerived(t *testing.T) {
	duty := models.FeeMetadata{Name: "관세", Amount: "120,000"}
	key := feeKeyOf(duty)
	overrides := map[string]string{key: "관세(정정)"}

	items, _ := buildFeeItems([]*models.FileRecord{feeFile(duty)}, nil, nil, overrides, nil)

	assert.Equal(t, "관세(정정)", items[0].Name)
	// The identity key is untouched by a rename.
	assert.Equal(t, key, items[0].Key)
}

func TestBuildFeeItems_PrevOrderSurvives(t *testing.T) {
	duty := models.FeeMetadata{Name: "관세", Amount: "120,000"}
	vat := models.FeeMetadata{Name: "부가가치세", Amount: "250,000"}
	prev := []string{feeKeyOf(vat), feeKeyOf(duty)}

	items, order := buildFeeItems([]*models.FileRecord{feeFile(duty, vat)}, nil, nil, nil, prev)

	assert.Equal(t, prev, order)
	assert.Equal(t, "부가가치세", items[0].Name)
}

func TestIsManualFeeKey(t *testing.T) {
	assert.True(t, IsManualFeeKey("manual:xyz"))
	assert.False(t, IsManualFeeKey("관세|120,000|"))
}
