// Package feeinfo extracts importer and fee metadata out of customs
// payment invoices. Extraction is best effort: a PDF that cannot be read
// yields no metadata, never an error the caller has to handle.
package feeinfo

import (
	"regexp"
	"strings"

	"github.com/customs-binder/backend/internal/models"
)

var reInvoiceName = regexp.MustCompile(`(?i)^PC[_-]`)

// IsInvoiceName reports whether a filename follows the payment-invoice
// naming convention.
func IsInvoiceName(name string) bool {
	return reInvoiceName.MatchString(name)
}

// feeLabels are the line-item names recognized on payment invoices.
// Longer labels come first so 부가가치세 is not swallowed by 부가세.
var feeLabels = []string{
	"부가가치세",
	"통관수수료",
	"부가세",
	"관세",
	"운송료",
	"창고료",
	"보험료",
	"수수료",
}

var importerLabels = []string{"수입화주", "수입자"}

var reAmount = regexp.MustCompile(`[0-9]{1,3}(?:,[0-9]{3})+|[0-9]+`)

// ParseFeeText scans extracted invoice text for fee line items and the
// importer name. Returns nil when the text carries neither.
func ParseFeeText(text string) *models.FeeInfo {
	if text == "" {
		return nil
	}

	info := &models.FeeInfo{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if info.Importer == "" {
			if importer := parseImporter(line); importer != "" {
				info.Importer = importer
				continue
			}
		}
		if fee, ok := parseFee(line); ok {
			info.Fees = append(info.Fees, fee)
		}
	}

	if info.Importer == "" && len(info.Fees) == 0 {
		return nil
	}
	return info
}

func parseImporter(line string) string {
	for _, label := range importerLabels {
		idx := strings.Index(line, label)
		if idx < 0 {
			continue
		}
		rest := strings.TrimLeft(line[idx+len(label):], " \t:：")
		// The importer name ends at the next label-looking gap.
		if cut := strings.IndexAny(rest, "\t"); cut >= 0 {
			rest = rest[:cut]
		}
		rest = strings.TrimSpace(rest)
		if rest != "" {
			return rest
		}
	}
	return ""
}

func parseFee(line string) (models.FeeMetadata, bool) {
	for _, label := range feeLabels {
		idx := strings.Index(line, label)
		if idx < 0 {
			continue
		}
		amount := reAmount.FindString(line[idx+len(label):])
		if amount == "" {
			return models.FeeMetadata{}, false
		}
		return models.FeeMetadata{Name: label, Amount: amount}, true
	}
	return models.FeeMetadata{}, false
}
