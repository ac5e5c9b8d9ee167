package folder

// Reconcile repairs a previously persisted ordering after its token set
// changed: stale tokens drop out, surviving tokens keep their relative
// order, and tokens not seen before are appended in the order they appear
// in valid. The result is always an exact permutation of valid, and
// reconciling an already reconciled order against the same set is a no-op.
func Reconcile(prev, valid []string) []string {
	validSet := make(map[string]struct{}, len(valid))
	for _, t := range valid {
		validSet[t] = struct{}{}
	}

	out := make([]string, 0, len(valid))
	seen := make(map[string]struct{}, len(valid))
	for _, t := range prev {
		if _, ok := validSet[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		out = append(out, t)
		seen[t] = struct{}{}
	}
	for _, t := range valid {
		if _, dup := seen[t]; dup {
			continue
		}
		out = append(out, t)
		seen[t] = struct{}{}
	}
	return out
}
