package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCustoms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hyphenated", "JS_12345-67-890123M.pdf", "12345-67-890123M"},
		{"plain digits", "JS_1234567890123M.pdf", "12345-67-890123M"},
		{"lowercase m", "12345-67-890123m.pdf", "12345-67-890123M"},
		{"embedded in name", "수입신고필증 12345-67-890123M (3).pdf", "12345-67-890123M"},
		{"no customs number", "BL_ABCD123456.pdf", ""},
		{"M followed by digit", "12345-67-890123M9.pdf", ""},
		{"too few digits", "1234-67-890123M.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCustoms(tt.in))
		})
	}
}

func TestExtractCustoms_NormalizedFormsAgree(t *testing.T) {
	hyphen := ExtractCustoms("12345-67-890123M.pdf")
	plain := ExtractCustoms("1234567890123M.pdf")
	assert.Equal(t, hyphen, plain)
	assert.Equal(t, "12345-67-890123M", hyphen)
}

func TestExtractBL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"explicit BL token", "BL_ABCD123456 invoice.pdf", "ABCD123456"},
		{"bl token lowercase", "bl-abcd123456.pdf", "ABCD123456"},
		{"mixed alnum candidate", "IMP_KMTC1234567.pdf", "KMTC1234567"},
		{"longest candidate wins", "AB1234 KMTCSEL1234567.pdf", "KMTCSEL1234567"},
		{"all-digit candidate", "NB_123456789012.pdf", "123456789012"},
		{"customs number is not a BL", "12345-67-890123M.pdf", ""},
		{"pure letters rejected", "ABCDEFGH.pdf", ""},
		{"too short", "AB123.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBL(tt.in))
		})
	}
}

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two letter", "JS_12345-67-890123M.pdf", "JS"},
		{"three letter", "IMP_12345-67-890123M.pdf", "IMP"},
		{"space separator", "VT 12345-67-890123M.pdf", "VT"},
		{"lowercase not a prefix", "js_12345-67-890123M.pdf", PrefixUnknown},
		{"no prefix", "12345-67-890123M.pdf", PrefixUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrefix(tt.in))
		})
	}
}

func TestIsCustomsOnly(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"bare hyphenated", "12345-67-890123M.pdf", true},
		{"bare plain", "1234567890123M.pdf", true},
		{"copy suffix disqualifies", "12345-67-890123M (2).pdf", false},
		{"prefixed", "JS_12345-67-890123M.pdf", false},
		{"no customs number", "invoice.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCustomsOnly(tt.in))
		})
	}
}
