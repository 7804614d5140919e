package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Status describes the lifecycle of the in-memory record collection. A failed
// load is a distinct terminal state from an empty-but-successful one; the two
// require different UI messaging.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ErrNotLoaded is returned by queries before the first successful load.
var ErrNotLoaded = errors.New("lookup: record store not loaded")

// RecordSource produces the full denormalized record collection. Mapping the
// upstream wire shape into Records, including the unit registry join, is the
// source's concern; the store only holds the result.
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]Record, error)
}

// Snapshot is one immutable generation of the record collection. Every
// derived view (filter, sort, page, aggregate) runs against a single snapshot
// so one pass never observes two generations.
type Snapshot struct {
	ID       string
	Records  []Record
	LoadedAt time.Time
}

// Stats summarizes a loaded snapshot.
type Stats struct {
	TotalRecords    int `json:"totalRecords"`
	TotalCustomers  int `json:"totalCustomers"`
	TotalUnits      int `json:"totalUnits"`
	WithUnitDetails int `json:"recordsWithUnitDetails"`
}

// Store holds the session's record collection. It is populated once per
// session; concurrent load requests collapse into a single upstream fetch.
// Records are never mutated in place, so readers need no locks beyond the
// snapshot swap.
type Store struct {
	logger *slog.Logger

	mu      sync.RWMutex
	snap    *Snapshot
	loading bool
	loadErr error

	group singleflight.Group
}

// NewStore constructs an empty Store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Load fetches the record collection from the source unless a snapshot is
// already resident. Concurrent callers share one in-flight fetch; a rapid
// series of UI interactions never re-issues the upstream request.
func (s *Store) Load(ctx context.Context, source RecordSource) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, _ := s.group.Do("load", func() (interface{}, error) {
		s.mu.Lock()
		if s.snap != nil {
			snap := s.snap
			s.mu.Unlock()
			return snap, nil
		}
		s.loading = true
		s.mu.Unlock()

		records, err := source.FetchRecords(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		if err != nil {
			s.loadErr = err
			s.logger.Error("record load failed", slog.Any("error", err))
			return nil, err
		}
		s.loadErr = nil
		s.snap = newSnapshot(records)
		s.logger.Info("record store loaded",
			slog.String("snapshot", s.snap.ID),
			slog.Int("records", len(records)))
		return s.snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Reload unconditionally fetches a fresh snapshot and swaps it in. Used by the
// background refresh job; readers holding the previous snapshot finish their
// pass against it.
func (s *Store) Reload(ctx context.Context, source RecordSource) (*Snapshot, error) {
	records, err := source.FetchRecords(ctx)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return nil, err
	}
	snap := newSnapshot(records)
	s.mu.Lock()
	s.snap = snap
	s.loadErr = nil
	s.mu.Unlock()
	s.logger.Info("record store reloaded",
		slog.String("snapshot", snap.ID),
		slog.Int("records", len(records)))
	return snap, nil
}

// Snapshot returns the resident snapshot, or ErrNotLoaded / the load error
// when none exists yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap != nil {
		return s.snap, nil
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return nil, ErrNotLoaded
}

// Status reports the store lifecycle state and the last load error, if any.
func (s *Store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.snap != nil:
		return StatusReady, nil
	case s.loading:
		return StatusLoading, nil
	case s.loadErr != nil:
		return StatusFailed, s.loadErr
	}
	return StatusEmpty, nil
}

// Stats summarizes the resident snapshot. Zero values when not loaded.
func (s *Store) Stats() Stats {
	snap, err := s.Snapshot()
	if err != nil {
		return Stats{}
	}
	customers := make(map[string]struct{})
	units := make(map[string]struct{})
	withDetails := 0
	for i := range snap.Records {
		r := &snap.Records[i]
		if r.CustomerName != "" {
			customers[r.CustomerName] = struct{}{}
		}
		if r.UnitID != "" {
			units[r.UnitID] = struct{}{}
		}
		if r.Unit != nil {
			withDetails++
		}
	}
	return Stats{
		TotalRecords:    len(snap.Records),
		TotalCustomers:  len(customers),
		TotalUnits:      len(units),
		WithUnitDetails: withDetails,
	}
}

func newSnapshot(records []Record) *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		Records:  records,
		LoadedAt: time.Now().UTC(),
	}
}
