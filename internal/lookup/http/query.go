package lookuphttp

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fleetview/fleetview/internal/lookup"
)

type parsedQuery struct {
	mode    lookup.Mode
	sortBy  string
	dir     lookup.Direction
	page    int
	perPage int
}

// parseQuery validates the query string and builds the per-request filter
// state. Filter state is request-scoped: the server holds no selections
// between calls, so two dashboard tabs naturally keep independent filters.
func (h *Handler) parseQuery(r *http.Request) (parsedQuery, lookup.FilterState, error) {
	values := r.URL.Query()

	dto := queryDTO{
		Mode:        values.Get("mode"),
		From:        values.Get("from"),
		To:          values.Get("to"),
		Search:      values.Get("q"),
		SearchField: values.Get("searchField"),
		SortBy:      values.Get("sort"),
		Dir:         values.Get("dir"),
		Page:        intParam(values.Get("page")),
		PerPage:     intParam(values.Get("perPage")),
	}
	if err := h.validate.Struct(&dto); err != nil {
		return parsedQuery{}, lookup.FilterState{}, errValidation(fmt.Sprintf("invalid query: %v", err))
	}

	state := lookup.NewFilterState()
	if dto.From != "" {
		state.From, _ = time.Parse("2006-01-02", dto.From)
	}
	if dto.To != "" {
		state.To, _ = time.Parse("2006-01-02", dto.To)
	}
	state.Customers = lookup.NewStringSet(values["customer"]...)
	state.Units = lookup.NewStringSet(values["unit"]...)
	state.Years = lookup.NewStringSet(values["year"]...)
	state.Makes = lookup.NewStringSet(values["make"]...)
	state.Models = lookup.NewStringSet(values["model"]...)
	state.SearchTerm = dto.Search
	if dto.SearchField != "" {
		state.SearchField = lookup.SearchField(dto.SearchField)
	}

	q := parsedQuery{
		mode:    lookup.ModeServiceOrder,
		sortBy:  dto.SortBy,
		dir:     lookup.Direction(dto.Dir),
		page:    dto.Page,
		perPage: dto.PerPage,
	}
	if dto.Mode != "" {
		q.mode = lookup.Mode(dto.Mode)
	}
	return q, state, nil
}

func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parseFacet(raw string) (lookup.Facet, bool) {
	for _, f := range lookup.Facets {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}
