package webhook

import (
	"strconv"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/goccy/go-json"
)

// MapFields applies the ordered mapping rules of a webhook to an inbound
// payload and produces the canonical key -> string record. Missing values
// produce no key at all; downstream code distinguishes "absent" from
// "empty". A fixed token whose key is absent from the payload falls back
// to the token itself, which is how admins configure constant values.
func MapFields(payload map[string]any, mappings []models.FieldMapping) map[string]string {
	out := make(map[string]string, len(mappings))

	for _, m := range mappings {
		var value any
		found := false

		if m.IsPathExpression() {
			value, found = Extract(payload, m.ExternalField)
		} else if v, ok := payload[m.ExternalField]; ok {
			// A present key wins even when its value is null; null counts
			// as absent, it is not replaced by the token.
			value, found = v, v != nil
		} else {
			// Fixed-value mapping: the token itself is the value.
			value, found = m.ExternalField, true
		}
		if !found {
			continue
		}

		s, ok := stringify(value)
		if !ok {
			continue
		}
		out[m.CanonicalField] = m.Prefix + s + m.Suffix
	}

	return out
}

// stringify renders a mapped value as a string. Numbers keep their plain
// decimal form; composite values are re-encoded as JSON so object-shaped
// fields (like structured offers) survive the mapping.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case nil:
		return "", false
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
