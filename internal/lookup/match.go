package lookup

import "strings"

// SimpleMatch reports whether haystack contains needle as a case-insensitive
// substring. An empty needle or haystack never matches.
func SimpleMatch(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(haystack))
	n := strings.ToLower(strings.TrimSpace(needle))
	if h == "" || n == "" {
		return false
	}
	return strings.Contains(h, n)
}

// PartMatch is the fuzzy matcher for part numbers and SKUs. Both sides are
// normalized to bare [a-z0-9] before comparison, so hyphens, underscores,
// spacing, dots, and slashes never break a lookup. A match succeeds on
// normalized equality, containment in either direction, per-word containment
// of a multi-word needle, containment after stripping leading zeros, or a
// prefix relation in either direction.
//
// The permissiveness is intentional: in this domain a missed part lookup costs
// far more than a false positive, so short needles matching broadly is
// accepted behavior.
func PartMatch(candidate, needle string) bool {
	if candidate == "" || needle == "" {
		return false
	}

	part := normalizePart(candidate)
	search := normalizePart(needle)
	if part == "" || search == "" {
		return false
	}

	if part == search {
		return true
	}
	if strings.Contains(part, search) || strings.Contains(search, part) {
		return true
	}

	// Multi-word needles match when every word is contained on its own.
	words := strings.Fields(strings.ToLower(needle))
	if len(words) > 1 {
		all := true
		for _, w := range words {
			nw := normalizePart(w)
			if nw == "" || !strings.Contains(part, nw) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}

	// "01" and "1" style variants.
	if strings.Contains(stripLeadingZeros(part), stripLeadingZeros(search)) {
		return true
	}

	return strings.HasPrefix(part, search) || strings.HasPrefix(search, part)
}

// normalizePart lowercases, trims, and drops everything outside [a-z0-9].
func normalizePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
