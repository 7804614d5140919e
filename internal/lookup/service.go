package lookup

import (
	"github.com/fleetview/fleetview/internal/shared"
)

// Query is one filter+sort+page request against the record store.
type Query struct {
	Mode    Mode
	State   FilterState
	SortBy  string
	Dir     Direction
	Page    int
	PerPage int
}

// PageResult is one ordered page of matching records together with the
// totals the table header needs. SnapshotID identifies the store generation
// the whole pass ran against.
type PageResult struct {
	Records    []Record          `json:"records"`
	Pagination shared.Pagination `json:"pagination"`
	SnapshotID string            `json:"snapshotId"`
}

// FacetResult is one dimension's option list.
type FacetResult struct {
	Facet      Facet    `json:"facet"`
	Options    []string `json:"options"`
	SnapshotID string   `json:"snapshotId"`
}

// Service runs lookup queries against the store. All computation is
// synchronous and pure over one snapshot; the service itself holds no filter
// state.
type Service struct {
	store *Store
}

// NewService wires the query service to a store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Search filters, sorts, and pages the record collection. The entire pass
// reads one snapshot, so the counts and rows are mutually consistent even if
// a reload lands mid-request.
func (s *Service) Search(q Query) (PageResult, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return PageResult{}, err
	}

	if q.SortBy == "" {
		q.SortBy = "invoiceDate"
	}
	if q.Dir == "" {
		q.Dir = Desc
	}

	filtered := Apply(snap.Records, q.State, q.Mode)
	ordered := SortRecords(filtered, q.SortBy, q.Dir)
	page := shared.NewPagination(q.Page, q.PerPage, len(ordered))

	return PageResult{
		Records:    Page(ordered, page.Page, page.PerPage),
		Pagination: page,
		SnapshotID: snap.ID,
	}, nil
}

// FacetOptions computes one dimension's option list under the current
// selections, honoring self-exclusion.
func (s *Service) FacetOptions(facet Facet, state FilterState) (FacetResult, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return FacetResult{}, err
	}
	return FacetResult{
		Facet:      facet,
		Options:    Options(snap.Records, facet, state),
		SnapshotID: snap.ID,
	}, nil
}

// AllFacetOptions computes every dimension's options for one mode's state.
func (s *Service) AllFacetOptions(state FilterState) (map[Facet][]string, string, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, "", err
	}
	return AllOptions(snap.Records, state), snap.ID, nil
}
