package folder

import (
	"strings"

	"github.com/customs-binder/backend/internal/models"
)

// feeKeyOf builds the stable identity of a metadata-derived fee item.
func feeKeyOf(fee models.FeeMetadata) string {
	return strings.Join([]string{fee.Name, fee.Amount, fee.Vendor}, "|")
}

// manualFeePrefix marks user-created fee items so they can be told apart
// from metadata-derived ones after a settings round-trip.
const manualFeePrefix = "manual:"

// IsManualFeeKey reports whether a fee key identifies a user-created item.
func IsManualFeeKey(key string) bool {
	return strings.HasPrefix(key, manualFeePrefix)
}

// buildFeeItems derives the ordered fee line items of one group:
// metadata-derived entries first (de-duplicated by composite key, first
// occurrence wins), then persisted manual entries, minus hidden keys, with
// display-name overrides applied, finally reconciled against the group's
// persisted fee order. Returns the items in display order together with the
// new order list to persist.
func buildFeeItems(groupFiles []*models.FileRecord, manual []models.FeeLineItem,
	hidden map[string]bool, overrides map[string]string, prevOrder []string,
) ([]models.FeeLineItem, []string) {

	byKey := make(map[string]models.FeeLineItem)
	var keys []string

	for _, f := range groupFiles {
		for _, fee := range f.Fees {
			key := feeKeyOf(fee)
			if _, exists := byKey[key]; exists {
				continue
			}
			byKey[key] = models.FeeLineItem{
				Key:    key,
				Name:   fee.Name,
				Amount: fee.Amount,
				Vendor: fee.Vendor,
			}
			keys = append(keys, key)
		}
	}

	for _, item := range manual {
		if _, exists := byKey[item.Key]; exists {
			continue
		}
		item.Manual = true
		byKey[item.Key] = item
		keys = append(keys, item.Key)
	}

	// Hidden keys are a soft delete: dropping the key here while keeping it
	// in the hidden set stops a metadata re-scan from resurrecting the item.
	visible := keys[:0]
	for _, key := range keys {
		if hidden[key] {
			delete(byKey, key)
			continue
		}
		visible = append(visible, key)
	}

	order := Reconcile(prevOrder, visible)

	items := make([]models.FeeLineItem, 0, len(order))
	for _, key := range order {
		item := byKey[key]
		if !item.Manual {
			if name, ok := overrides[key]; ok && name != "" {
				item.Name = name
			}
		}
		items = append(items, item)
	}
	return items, order
}
