package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetview/fleetview/internal/lookup"
)

func invDate() time.Time {
	return time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
}

func labor(invoice, desc string, qty, laborRate, total, actualHours float64) lookup.Record {
	return lookup.Record{
		InvoiceNumber:      invoice,
		Type:               lookup.TypeLabor,
		ServiceDescription: desc,
		Quantity:           qty,
		LaborRate:          laborRate,
		Rate:               laborRate,
		Total:              total,
		ActualHours:        actualHours,
		InvoiceDate:        invDate(),
	}
}

func part(invoice, desc, partNum string, qty, rate, total float64) lookup.Record {
	return lookup.Record{
		InvoiceNumber:   invoice,
		Type:            lookup.TypePart,
		PartDescription: desc,
		PartNumber:      partNum,
		Quantity:        qty,
		Rate:            rate,
		Total:           total,
		InvoiceDate:     invDate(),
	}
}

func TestAggregateUnknownInvoice(t *testing.T) {
	_, ok := Aggregate([]lookup.Record{labor("100", "PM Service", 1, 150, 150, 1)}, "999")
	assert.False(t, ok)
}

func TestAggregateFiltersToOneInvoice(t *testing.T) {
	records := []lookup.Record{
		labor("100", "PM Service", 1, 150, 150, 1),
		labor("200", "Brake job", 2, 150, 300, 2),
	}
	detail, ok := Aggregate(records, "100")
	require.True(t, ok)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "PM Service", detail.Lines[0].Description)
}

func TestAggregateMergesLaborByRateBucket(t *testing.T) {
	records := []lookup.Record{
		labor("100", "Brake job", 1, 150, 150, 0.5),
		labor("100", "Brake job", 1, 150, 150, 0.5),
		labor("100", "Brake job", 1, 175, 175, 1),
	}
	detail, ok := Aggregate(records, "100")
	require.True(t, ok)

	// Two rate buckets within one service group.
	require.Len(t, detail.Lines, 2)
	merged := detail.Lines[0]
	assert.InDelta(t, 2, merged.Quantity, 1e-9)
	assert.InDelta(t, 300, merged.Amount, 1e-9)
	assert.InDelta(t, 1, merged.ActualHours, 1e-9)

	// 2 invoiced hours over 1 actual hour.
	require.NotNil(t, merged.Efficiency)
	assert.InDelta(t, 200, *merged.Efficiency, 1e-9)
}

func TestAggregateQualityControlMergesAcrossRates(t *testing.T) {
	qc1 := labor("100", "Final inspection", 0.5, 150, 75, 0.5)
	qc1.GlobalServiceDescription = "QUALITY CONTROL"
	qc2 := labor("100", "Final inspection", 0.5, 175, 87.5, 0.5)
	qc2.GlobalServiceDescription = "QUALITY CONTROL"

	detail, ok := Aggregate([]lookup.Record{qc1, qc2}, "100")
	require.True(t, ok)

	require.Len(t, detail.Lines, 1)
	line := detail.Lines[0]
	assert.True(t, line.QualityControl)
	assert.InDelta(t, 1, line.Quantity, 1e-9)
	assert.InDelta(t, 162.5, line.Amount, 1e-9)
}

func TestAggregatePartMergeKeyIncludesRate(t *testing.T) {
	records := []lookup.Record{
		part("100", "Oil filter", "HD400", 1, 12.50, 12.50),
		part("100", "Oil filter", "HD400", 2, 12.50, 25.00),
		// Cent-level price difference stays its own line.
		part("100", "Oil filter", "HD400", 1, 12.51, 12.51),
	}
	detail, ok := Aggregate(records, "100")
	require.True(t, ok)

	require.Len(t, detail.Lines, 2)
	assert.InDelta(t, 3, detail.Lines[0].Quantity, 1e-9)
	assert.InDelta(t, 37.50, detail.Lines[0].Amount, 1e-9)
	assert.InDelta(t, 1, detail.Lines[1].Quantity, 1e-9)
}

func TestAggregateGroupsKeepFirstSeenOrder(t *testing.T) {
	records := []lookup.Record{
		labor("100", "Brake job", 1, 150, 150, 1),
		labor("100", "PM Service", 1, 150, 150, 1),
		part("100", "Brake chamber", "BW-287126", 1, 95, 95),
	}
	records[2].ServiceDescription = "Brake job"

	detail, ok := Aggregate(records, "100")
	require.True(t, ok)

	require.Len(t, detail.Lines, 3)
	assert.Equal(t, "Brake job", detail.Lines[0].Description)
	assert.Equal(t, KindPart, detail.Lines[1].Kind)
	assert.Equal(t, 0, detail.Lines[1].GroupIndex)
	assert.Equal(t, "PM Service", detail.Lines[2].Description)
	assert.Equal(t, 1, detail.Lines[2].GroupIndex)
}

func TestAggregateComplaintLineLeadsGroup(t *testing.T) {
	rec := labor("100", "Check engine light", 1, 150, 150, 1)
	rec.ComplaintDescription = "CEL on, derate"

	detail, ok := Aggregate([]lookup.Record{rec}, "100")
	require.True(t, ok)

	require.Len(t, detail.Lines, 2)
	assert.Equal(t, KindComplaint, detail.Lines[0].Kind)
	assert.Equal(t, "CEL on, derate", detail.Lines[0].Description)
	assert.True(t, detail.Lines[0].FirstInGroup)
	assert.False(t, detail.Lines[1].FirstInGroup)
	assert.True(t, detail.Lines[1].LastInGroup)
}

func TestAggregateBlankServiceDescriptionGroupsAsGeneral(t *testing.T) {
	detail, ok := Aggregate([]lookup.Record{labor("100", "", 1, 150, 150, 1)}, "100")
	require.True(t, ok)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "General Service", detail.Lines[0].Description)
}

func TestAggregateEfficiencyNilWithoutActualHours(t *testing.T) {
	detail, ok := Aggregate([]lookup.Record{labor("100", "PM Service", 1, 150, 150, 0)}, "100")
	require.True(t, ok)
	require.Len(t, detail.Lines, 1)
	assert.Nil(t, detail.Lines[0].Efficiency)
	assert.Zero(t, detail.LaborEfficiencyPercent)
}

func TestAggregateTotals(t *testing.T) {
	pm := labor("100", "PM Service", 1, 150, 150, 1)
	filter := part("100", "Oil filter", "HD400", 1, 12.50, 12.50)
	filter.SalesTotal = 13.25
	supplies := lookup.Record{
		InvoiceNumber: "100",
		Type:          lookup.TypeShopSupplies,
		Total:         9.99,
		InvoiceDate:   invDate(),
	}

	detail, ok := Aggregate([]lookup.Record{pm, filter, supplies}, "100")
	require.True(t, ok)

	assert.InDelta(t, 150, detail.LaborTotal, 1e-9)
	// Parts total is the pre-tax column.
	assert.InDelta(t, 12.50, detail.PartsTotal, 1e-9)
	assert.InDelta(t, 9.99, detail.ShopSuppliesTotal, 1e-9)
	// Invoice total prefers salesTotal per record and excludes shop supplies.
	assert.InDelta(t, 163.25, detail.InvoiceTotal, 1e-9)

	// Shop supplies never become a rendered line.
	for _, line := range detail.Lines {
		assert.NotEqual(t, "Shop Supplies", line.Description)
	}
	assert.Len(t, detail.Lines, 2)
}

func TestAggregateWeightedPartsMargin(t *testing.T) {
	a := part("100", "Filter", "A", 1, 100, 100)
	a.PartsMarginPercent = 20
	b := part("100", "Chamber", "B", 1, 300, 300)
	b.PartsMarginPercent = 40
	negative := part("100", "Core credit", "C", 1, -50, -50)
	negative.PartsMarginPercent = 99

	detail, ok := Aggregate([]lookup.Record{a, b, negative}, "100")
	require.True(t, ok)

	// (20*100 + 40*300) / 400; the negative-amount line is excluded.
	assert.InDelta(t, 35, detail.PartsMarginPercent, 1e-9)
}

func TestAggregateHeaderMileagePicksBestReading(t *testing.T) {
	records := []lookup.Record{
		labor("100", "PM Service", 1, 150, 150, 1),
		labor("100", "PM Service", 1, 150, 150, 1),
		labor("100", "PM Service", 1, 150, 150, 1),
		labor("100", "PM Service", 1, 150, 150, 1),
	}
	records[0].UnitMiles = "1"
	records[1].UnitMiles = ""
	records[2].UnitMiles = "45000"
	records[3].UnitMiles = "12,500"

	detail, ok := Aggregate(records, "100")
	require.True(t, ok)
	assert.Equal(t, "45,000", detail.Header.Mileage)
}

func TestAggregateHeaderMileageAllPlaceholders(t *testing.T) {
	records := []lookup.Record{
		labor("100", "PM Service", 1, 150, 150, 1),
	}
	records[0].UnitMiles = "N/A"

	detail, ok := Aggregate(records, "100")
	require.True(t, ok)
	assert.Equal(t, "N/A", detail.Header.Mileage)
}

func TestAggregateHeaderChassisFromUnitDetails(t *testing.T) {
	rec := labor("100", "PM Service", 1, 150, 150, 1)
	rec.CustomerName = "Acme"
	rec.UnitID = "U1"
	rec.Unit = &lookup.UnitDetails{ChassisYear: "2019", ChassisMake: "Freightliner", ChassisModel: "Cascadia"}

	detail, ok := Aggregate([]lookup.Record{rec}, "100")
	require.True(t, ok)
	assert.Equal(t, "Acme", detail.Header.Customer)
	assert.Equal(t, "Freightliner", detail.Header.ChassisMake)
	assert.Equal(t, invDate(), detail.Header.InvoiceDate)
}

func TestFormatMileage(t *testing.T) {
	assert.Equal(t, "45,000", FormatMileage("45000"))
	assert.Equal(t, "12,500", FormatMileage("12,500"))
	assert.Equal(t, "N/A", FormatMileage("1"))
	assert.Equal(t, "N/A", FormatMileage(""))
	assert.Equal(t, "N/A", FormatMileage("junk"))
}
