package spend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetview/fleetview/internal/lookup"
)

type fakeProvider struct {
	snap *lookup.Snapshot
	err  error
}

func (f *fakeProvider) Snapshot() (*lookup.Snapshot, error) {
	return f.snap, f.err
}

func spendRecord(invoice, customer string, total float64, date time.Time) lookup.Record {
	return lookup.Record{
		InvoiceNumber: invoice,
		CustomerName:  customer,
		Type:          lookup.TypeLabor,
		Total:         total,
		InvoiceDate:   date,
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 8, 14, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, records []lookup.Record, fixedCosts map[string]float64) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	provider := &fakeProvider{snap: &lookup.Snapshot{ID: "snap-1", Records: records}}
	svc := NewService(nil, provider, client, 20*time.Hour, fixedCosts)
	svc.now = fixedNow
	return svc, mr
}

func TestSummaryMonthToDate(t *testing.T) {
	records := []lookup.Record{
		spendRecord("100", "Acme", 150, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)),
		spendRecord("100", "Acme", 95, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)),
		spendRecord("200", "Acme", 300, time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)),
		// Prior month stays out.
		spendRecord("90", "Acme", 999, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)),
		spendRecord("300", "Borden", 50, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(t, records, map[string]float64{"Acme": 1090})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Customers, 2)
	acme := summary.Customers[0]
	assert.Equal(t, "Acme", acme.Customer)
	assert.InDelta(t, 545, acme.Spend, 1e-9)
	assert.Equal(t, 2, acme.Invoices)
	assert.InDelta(t, 1090, acme.FixedBudget, 1e-9)
	assert.InDelta(t, 50, acme.BudgetUsedPercent, 1e-9)

	borden := summary.Customers[1]
	assert.Zero(t, borden.FixedBudget)
	assert.Zero(t, borden.BudgetUsedPercent)

	assert.InDelta(t, 595, summary.TotalSpend, 1e-9)
	assert.Equal(t, "snap-1", summary.SnapshotID)
}

func TestSummaryPrefersSalesTotal(t *testing.T) {
	rec := spendRecord("100", "Acme", 100, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC))
	rec.SalesTotal = 110
	svc, _ := newTestService(t, []lookup.Record{rec}, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Customers, 1)
	assert.InDelta(t, 110, summary.Customers[0].Spend, 1e-9)
}

func TestSummaryServedFromCache(t *testing.T) {
	records := []lookup.Record{
		spendRecord("100", "Acme", 100, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(t, records, nil)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)

	// Mutate the snapshot; the cached summary keeps serving until refresh.
	svc.store.(*fakeProvider).snap = &lookup.Snapshot{ID: "snap-2"}

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.SnapshotID, second.SnapshotID)

	refreshed, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-2", refreshed.SnapshotID)
}

func TestSummaryStaleMonthRecomputed(t *testing.T) {
	records := []lookup.Record{
		spendRecord("100", "Acme", 100, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(t, records, nil)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)

	// A cached July report must not satisfy an August request.
	svc.now = func() time.Time { return time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC) }
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Customers)
	assert.Equal(t, time.September, summary.MonthStart.Month())
}

func TestSummaryStoreNotLoaded(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(nil, &fakeProvider{err: lookup.ErrNotLoaded}, client, time.Hour, nil)
	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, lookup.ErrNotLoaded)
}

func TestSummaryWorksWithoutRedis(t *testing.T) {
	provider := &fakeProvider{snap: &lookup.Snapshot{ID: "snap-1", Records: []lookup.Record{
		spendRecord("100", "Acme", 100, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
	}}}
	svc := NewService(nil, provider, nil, time.Hour, nil)
	svc.now = fixedNow

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Customers, 1)
}

func TestFixedCostsMatchCaseInsensitive(t *testing.T) {
	records := []lookup.Record{
		spendRecord("100", "Acme Leasing", 500, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(t, records, map[string]float64{"ACME LEASING": 1000})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Customers, 1)
	assert.InDelta(t, 50, summary.Customers[0].BudgetUsedPercent, 1e-9)
}
