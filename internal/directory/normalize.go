package directory

import (
	"encoding/json"
	"strings"
)

// NormalizeEmail builds the lookup key: trimmed and lowercased so emails
// differing only by case or surrounding whitespace resolve to the same user.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CoerceFacilities turns the stored facility field into an ordered list.
// The column has arrived as NULL, a JSON array, or a comma-delimited string
// across deployments; anything else degrades to an empty list rather than
// failing the whole directory load. Duplicates are removed, order kept.
func CoerceFacilities(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	if strings.HasPrefix(raw, "{") {
		// A JSON object is not a facility list in any known deployment.
		return []string{}
	}
	if strings.HasPrefix(raw, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return []string{}
		}
		out := make([]string, 0, len(arr))
		seen := make(map[string]bool, len(arr))
		for _, v := range arr {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
