package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu      sync.Mutex
	calls   atomic.Int64
	records []Record
	err     error
	delay   time.Duration
}

func (s *stubSource) FetchRecords(ctx context.Context) ([]Record, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubSource) set(records []Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.err = err
}

func TestStoreLoadOnce(t *testing.T) {
	src := &stubSource{records: []Record{{InvoiceNumber: "1"}}}
	store := NewStore(nil)

	first, err := store.Load(context.Background(), src)
	require.NoError(t, err)
	second, err := store.Load(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestStoreConcurrentLoadSingleFetch(t *testing.T) {
	src := &stubSource{records: []Record{{InvoiceNumber: "1"}}, delay: 50 * time.Millisecond}
	store := NewStore(nil)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := store.Load(context.Background(), src)
			errs[i] = err
			if snap != nil {
				ids[i] = snap.ID
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, src.calls.Load())
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestStoreStatusLifecycle(t *testing.T) {
	store := NewStore(nil)

	status, err := store.Status()
	assert.Equal(t, StatusEmpty, status)
	assert.NoError(t, err)

	src := &stubSource{err: errors.New("upstream down")}
	_, loadErr := store.Load(context.Background(), src)
	require.Error(t, loadErr)

	status, err = store.Status()
	assert.Equal(t, StatusFailed, status)
	assert.Error(t, err)

	// An empty successful reload is ready, not failed.
	src.set([]Record{}, nil)
	_, err = store.Reload(context.Background(), src)
	require.NoError(t, err)

	status, err = store.Status()
	assert.Equal(t, StatusReady, status)
	assert.NoError(t, err)
}

func TestStoreSnapshotBeforeLoad(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestStoreReloadSwapsGeneration(t *testing.T) {
	src := &stubSource{records: []Record{{InvoiceNumber: "1"}}}
	store := NewStore(nil)

	first, err := store.Load(context.Background(), src)
	require.NoError(t, err)

	src.set([]Record{{InvoiceNumber: "1"}, {InvoiceNumber: "2"}}, nil)
	second, err := store.Reload(context.Background(), src)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, second.Records, 2)

	// Readers holding the old snapshot still see its records.
	assert.Len(t, first.Records, 1)
}

func TestStoreReloadFailureKeepsOldSnapshot(t *testing.T) {
	src := &stubSource{records: []Record{{InvoiceNumber: "1"}}}
	store := NewStore(nil)

	_, err := store.Load(context.Background(), src)
	require.NoError(t, err)

	src.set(nil, errors.New("feed flaked"))
	_, err = store.Reload(context.Background(), src)
	require.Error(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
}

func TestStoreStats(t *testing.T) {
	src := &stubSource{records: []Record{
		{InvoiceNumber: "1", CustomerName: "Acme", UnitID: "U1", Unit: &UnitDetails{}},
		{InvoiceNumber: "2", CustomerName: "Acme", UnitID: "U2"},
		{InvoiceNumber: "3", CustomerName: "Borden", UnitID: "U1"},
	}}
	store := NewStore(nil)
	_, err := store.Load(context.Background(), src)
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 2, stats.TotalUnits)
	assert.Equal(t, 1, stats.WithUnitDetails)
}
