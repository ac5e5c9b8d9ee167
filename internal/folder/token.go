package folder

import "strings"

// Composite order lists interleave file and fee references. Tokens are
// opaque to the frontend; it only moves them around.
const (
	tokenKindFile = "file"
	tokenKindFee  = "fee"
)

// FileToken builds the composite-order token for a file ID.
func FileToken(id string) string { return tokenKindFile + ":" + id }

// FeeToken builds the composite-order token for a fee item key.
func FeeToken(key string) string { return tokenKindFee + ":" + key }

// SplitToken breaks a composite token into kind and value. Unknown shapes
// come back with an empty kind and are ignored by the reconciler.
func SplitToken(token string) (kind, value string) {
	i := strings.Index(token, ":")
	if i < 0 {
		return "", token
	}
	kind, value = token[:i], token[i+1:]
	if kind != tokenKindFile && kind != tokenKindFee {
		return "", token
	}
	return kind, value
}
