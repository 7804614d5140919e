package invoice

import (
	"errors"
	"fmt"

	"github.com/fleetview/fleetview/internal/lookup"
)

// ErrNotFound reports an invoice with no records in the current snapshot.
var ErrNotFound = errors.New("invoice: not found")

// RecordProvider yields the resident record snapshot.
type RecordProvider interface {
	Snapshot() (*lookup.Snapshot, error)
}

// Service resolves invoice detail aggregations against the record store.
type Service struct {
	store RecordProvider
}

// NewService wires the aggregator to a record provider.
func NewService(store RecordProvider) *Service {
	return &Service{store: store}
}

// Detail aggregates one invoice. The returned snapshot ID identifies the
// store generation the aggregation ran over, which callers use as a cache key
// component.
func (s *Service) Detail(invoiceNumber string) (Detail, string, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return Detail{}, "", err
	}
	detail, ok := Aggregate(snap.Records, invoiceNumber)
	if !ok {
		return Detail{}, snap.ID, fmt.Errorf("%w: %s", ErrNotFound, invoiceNumber)
	}
	return detail, snap.ID, nil
}
