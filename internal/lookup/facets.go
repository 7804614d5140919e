package lookup

import (
	"sort"
	"strings"
)

// Options computes the distinct option list for one facet dimension,
// constrained by every other dimension's current selection but never by the
// queried dimension itself. Self-exclusion keeps a selected value visible in
// its own dropdown; without it, picking a customer would immediately hide that
// customer from the list.
//
// Output is deduplicated, trimmed, empty-excluded, and sorted ascending. The
// function is pure: it depends only on its arguments, so callers may memoize
// but never have to.
func Options(records []Record, facet Facet, state FilterState) []string {
	seen := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		if !candidateFor(r, facet, state) {
			continue
		}
		v := strings.TrimSpace(r.FacetValue(facet))
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// candidateFor applies every selection except the queried dimension's own.
func candidateFor(r *Record, queried Facet, state FilterState) bool {
	for _, facet := range Facets {
		if facet == queried {
			continue
		}
		sel := state.Selection(facet)
		if sel.Empty() {
			continue
		}
		if !sel.Has(r.FacetValue(facet)) {
			return false
		}
	}
	return true
}

// AllOptions computes every dimension's option list in one pass over the
// record set. It exists for the facet endpoint that populates all five
// dropdowns at once.
func AllOptions(records []Record, state FilterState) map[Facet][]string {
	out := make(map[Facet][]string, len(Facets))
	for _, facet := range Facets {
		out[facet] = Options(records, facet, state)
	}
	return out
}
