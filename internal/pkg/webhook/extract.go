package webhook

import (
	"strconv"
	"strings"
)

// Extract resolves a dotted/bracketed path against a decoded JSON value.
// Returns the value and true when every segment resolves; absence of any
// kind (missing key, out-of-range index, non-container intermediate, nil)
// yields (nil, false). It never panics on adversarial input.
func Extract(payload any, path string) (any, bool) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, false
	}

	current := payload
	for _, seg := range segments {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
		if current == nil {
			return nil, false
		}
	}
	return current, true
}

// splitPath breaks "items[0].price" into ["items", "0", "price"],
// ignoring empty segments.
func splitPath(path string) []string {
	normalized := strings.NewReplacer("[", ".", "]", ".").Replace(path)
	parts := strings.Split(normalized, ".")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
