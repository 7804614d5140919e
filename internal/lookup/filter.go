package lookup

import "strings"

// Apply filters records by date range, record type, facet membership, and
// search term, in that order. The stages are independent so ordering only
// affects how early a record short-circuits out. The result is a fresh slice;
// the input is never mutated.
func Apply(records []Record, state FilterState, mode Mode) []Record {
	term := strings.TrimSpace(state.SearchTerm)
	out := make([]Record, 0, len(records))
	for i := range records {
		r := &records[i]
		if !inDateRange(r, state) {
			continue
		}
		if !matchesMode(r, mode) {
			continue
		}
		if !matchesSelections(r, state) {
			continue
		}
		if term != "" && !matchesSearch(r, term, mode, state.SearchField) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

// inDateRange is inclusive on both ends. A zero bound places no constraint on
// that side.
func inDateRange(r *Record, state FilterState) bool {
	if !state.From.IsZero() && r.InvoiceDate.Before(state.From) {
		return false
	}
	if !state.To.IsZero() && r.InvoiceDate.After(state.To) {
		return false
	}
	return true
}

func matchesMode(r *Record, mode Mode) bool {
	switch mode {
	case ModeServiceOrder:
		return r.Type == TypeLabor
	case ModeParts:
		// Zero-quantity part rows are ordering artifacts, not real parts
		// usage, and are dropped from the parts view.
		return r.Type == TypePart && r.Quantity != 0
	}
	return true
}

func matchesSelections(r *Record, state FilterState) bool {
	for _, facet := range Facets {
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

func matchesSearch(r *Record, term string, mode Mode, field SearchField) bool {
	if mode == ModeServiceOrder {
		return SimpleMatch(r.ServiceDescription, term) ||
			SimpleMatch(r.GlobalServiceDescription, term)
	}
	if field == FieldPartNumber {
		return PartMatch(r.PartNumber, term) || PartMatch(r.Item, term)
	}
	return SimpleMatch(r.PartDescription, term)
}
