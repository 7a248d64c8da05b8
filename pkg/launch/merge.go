package launch

// MergeValues deep-merges src over dest. Objects merge key by key, a nil
// src keeps dest, and anything else in src replaces dest.
func MergeValues(dest, src any) any {
	if dest == nil {
		return src
	}
	if src == nil {
		return dest
	}
	dm, dok := dest.(map[string]any)
	sm, sok := src.(map[string]any)
	if !dok || !sok {
		return src
	}
	for k, sv := range sm {
		dm[k] = MergeValues(dm[k], sv)
	}
	return dm
}
