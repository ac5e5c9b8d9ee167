// Package classify extracts shipment identifiers from customs document
// filenames and ranks documents by configured type precedence.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/customs-binder/backend/internal/models"
)

// PrefixUnknown is returned for filenames without a recognizable prefix.
const PrefixUnknown = models.PrefixUnknown

var (
	reCustomsHyphen = regexp.MustCompile(`(?i)\d{5}-\d{2}-\d{6}M`)
	reCustomsPlain  = regexp.MustCompile(`(?i)\d{13}M`)

	reCustomsOnlyHyphen = regexp.MustCompile(`(?i)^\d{5}-\d{2}-\d{6}M$`)
	reCustomsOnlyPlain  = regexp.MustCompile(`(?i)^\d{13}M$`)

	// Explicit BL token, e.g. "BL_HDMU1234567" or "bl ABCD123456".
	reBLToken = regexp.MustCompile(`(?i)(?:^|[ _-])BL[ _-]?([A-Z0-9]{6,20})(?:[ _-]|$)`)

	// Leading 2-3 letter document-type code. Deliberately case-sensitive:
	// lowercase runs are not treated as prefixes.
	rePrefix = regexp.MustCompile(`^([A-Z]{2,3})[ _-]?`)

	reExtension  = regexp.MustCompile(`\.[^/.]+$`)
	reSeparators = regexp.MustCompile(`[ _-]+`)
	reHasAlpha   = regexp.MustCompile(`[A-Za-z]`)
	reHasDigit   = regexp.MustCompile(`\d`)
	reAllDigits  = regexp.MustCompile(`^\d+$`)
)

// findCustoms locates the first match of re in s that is not immediately
// followed by another digit. A trailing digit means the "M" belongs to a
// longer numeric run, not a declaration number.
func findCustoms(re *regexp.Regexp, s string) (start, end int, ok bool) {
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[1] >= len(s) || s[loc[1]] < '0' || s[loc[1]] > '9' {
			return loc[0], loc[1], true
		}
	}
	return 0, 0, false
}

// normalizeCustoms formats a 13-digit declaration number into the canonical
// hyphenated form with an upper-case M suffix.
func normalizeCustoms(digits string) string {
	return digits[:5] + "-" + digits[5:7] + "-" + digits[7:13] + "M"
}

// digitsOf strips everything but ASCII digits.
func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ExtractCustoms returns the customs declaration number found in a filename,
// normalized to DDDDD-DD-DDDDDDM, or "" when the name carries none. The
// hyphenated form wins over a plain 13-digit run.
func ExtractCustoms(name string) string {
	if start, end, ok := findCustoms(reCustomsHyphen, name); ok {
		return normalizeCustoms(digitsOf(name[start:end]))
	}
	if start, end, ok := findCustoms(reCustomsPlain, name); ok {
		return normalizeCustoms(digitsOf(name[start:end]))
	}
	return ""
}

// stripCustoms removes the first customs-number substring of each form,
// mirroring how candidates are cleaned before BL token scanning.
func stripCustoms(s string) string {
	if start, end, ok := findCustoms(reCustomsHyphen, s); ok {
		s = s[:start] + s[end:]
	}
	if start, end, ok := findCustoms(reCustomsPlain, s); ok {
		s = s[:start] + s[end:]
	}
	return s
}

// ExtractBL returns the bill-of-lading code found in a filename, upper-cased,
// or "" when no candidate qualifies. An explicit "BL" token wins outright;
// otherwise the leftmost-longest remaining token of length 6-20 that is
// either mixed letters+digits or all digits is taken. The longest-wins rule
// is a heuristic and can misread dense filenames; callers treat the result
// as a grouping hint, never as ground truth.
func ExtractBL(name string) string {
	trimmed := reExtension.ReplaceAllString(name, "")
	if m := reBLToken.FindStringSubmatch(trimmed); m != nil {
		return strings.ToUpper(m[1])
	}

	cleaned := stripCustoms(trimmed)
	tokens := reSeparators.Split(cleaned, -1)
	var candidates []string
	for _, token := range tokens {
		if len(token) < 6 || len(token) > 20 {
			continue
		}
		hasAlpha := reHasAlpha.MatchString(token)
		hasDigit := reHasDigit.MatchString(token)
		if (hasAlpha && hasDigit) || reAllDigits.MatchString(token) {
			candidates = append(candidates, token)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})
	return strings.ToUpper(candidates[0])
}

// ExtractPrefix returns the leading 2-3 letter document-type code of a
// filename, or the unknown sentinel when the name starts with anything else.
func ExtractPrefix(name string) string {
	trimmed := reExtension.ReplaceAllString(name, "")
	m := rePrefix.FindStringSubmatch(trimmed)
	if m == nil {
		return PrefixUnknown
	}
	return m[1]
}

// IsCustomsOnly reports whether the whole filename, extension stripped and
// trimmed, is exactly a customs declaration number in either form. Such
// files are fast-tracked to the front of their folder when the
// customs-only-first setting is on.
func IsCustomsOnly(name string) bool {
	trimmed := strings.TrimSpace(reExtension.ReplaceAllString(name, ""))
	if trimmed == "" {
		return false
	}
	return reCustomsOnlyHyphen.MatchString(trimmed) || reCustomsOnlyPlain.MatchString(trimmed)
}
