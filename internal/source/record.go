package source

import (
	"github.com/fleetview/fleetview/internal/lookup"
)

// MapRecord converts one upstream revenue row into a lookup.Record, joining
// unit details from the registry by nickname. A registry miss leaves the
// Unit field nil; that is a valid record, not an error.
func MapRecord(raw RawRecord, registry *UnitRegistry) lookup.Record {
	rec := lookup.Record{
		InvoiceNumber: raw.str("Number"),
		OrderNumber:   raw.str("Order"),
		CustomerName:  raw.str("Customer"),
		UnitID:        raw.str("Unit"),
		Shop:          raw.str("Shop"),
		Type:          lookup.ParseRecordType(raw.str("Type")),
		Item:          raw.str("Item"),
		InvoiceDate:   parseDate(raw.str("Invoice Date")),

		Quantity:           raw.num("Qty"),
		Rate:               raw.num("Rate"),
		Total:              raw.num("Total"),
		SalesTotal:         raw.num("Sales Total"),
		PartCost:           raw.num("Part Cost"),
		PartsMarginPercent: raw.num("Parts Margin %"),
		LaborRate:          raw.num("Labor Rate"),
		TechnicianRate:     raw.num("Technician Rate"),
		ActualHours:        raw.num("Actual Hours"),

		ServiceDescription:       raw.str("Service Description"),
		GlobalServiceDescription: raw.str("Global Service Description"),
		ComplaintDescription:     raw.str("Complaint Description"),
		PartDescription:          raw.str("Part Description"),
		PartNumber:               raw.str("Part Number"),

		UnitMiles: raw.str("Unit Miles"),
	}

	nickname := rec.UnitID
	if nickname == "" {
		nickname = raw.str("Unit Nickname")
	}
	if registry != nil && nickname != "" {
		rec.Unit = registry.Lookup(nickname)
	}
	return rec
}

// MapRecords converts a full payload, sharing one registry across all rows so
// records for the same unit point at the same UnitDetails value.
func MapRecords(raws []RawRecord, registry *UnitRegistry) []lookup.Record {
	out := make([]lookup.Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, MapRecord(raw, registry))
	}
	return out
}
