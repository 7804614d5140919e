package lookup

import (
	"sort"
	"strings"
)

// Direction orders a sorted column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// columnKind drives the comparison used for a sort column.
type columnKind int

const (
	kindString columnKind = iota
	kindNumber
	kindDate
)

func kindOf(column string) columnKind {
	switch column {
	case "quantity", "rate", "total", "salesTotal", "laborRate",
		"technicianRate", "actualHours", "partCost", "partsMarginPercent":
		return kindNumber
	case "invoiceDate":
		return kindDate
	}
	return kindString
}

// SortRecords returns a stably sorted copy of records ordered by one column.
// Ties keep their relative input order. Numeric columns compare as floats,
// the date column as timestamps, and everything else as case-insensitive
// strings.
func SortRecords(records []Record, column string, dir Direction) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	kind := kindOf(column)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareColumn(&out[i], &out[j], column, kind)
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareColumn(a, b *Record, column string, kind columnKind) int {
	switch kind {
	case kindNumber:
		av, bv := numericValue(a, column), numericValue(b, column)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case kindDate:
		au, bu := a.InvoiceDate.UnixMilli(), b.InvoiceDate.UnixMilli()
		switch {
		case au < bu:
			return -1
		case au > bu:
			return 1
		}
		return 0
	}
	return strings.Compare(
		strings.ToLower(stringValue(a, column)),
		strings.ToLower(stringValue(b, column)),
	)
}

func numericValue(r *Record, column string) float64 {
	switch column {
	case "quantity":
		return r.Quantity
	case "rate":
		return r.Rate
	case "total":
		return r.Total
	case "salesTotal":
		return r.SalesTotal
	case "laborRate":
		return r.LaborRate
	case "technicianRate":
		return r.TechnicianRate
	case "actualHours":
		return r.ActualHours
	case "partCost":
		return r.PartCost
	case "partsMarginPercent":
		return r.PartsMarginPercent
	}
	return 0
}

func stringValue(r *Record, column string) string {
	switch column {
	case "invoiceNumber":
		return r.InvoiceNumber
	case "orderNumber":
		return r.OrderNumber
	case "customerName":
		return r.CustomerName
	case "unitId":
		return r.UnitID
	case "shop":
		return r.Shop
	case "type":
		return string(r.Type)
	case "item":
		return r.Item
	case "serviceDescription":
		return r.ServiceDescription
	case "globalServiceDescription":
		return r.GlobalServiceDescription
	case "partDescription":
		return r.PartDescription
	case "partNumber":
		return r.PartNumber
	}
	return ""
}

// NextSort resolves the sort state after a column header click. Clicking the
// current column flips direction; clicking a new column selects it descending,
// the "most relevant first" default for report tables.
func NextSort(currentColumn string, currentDir Direction, clicked string) (string, Direction) {
	if clicked == currentColumn {
		if currentDir == Asc {
			return currentColumn, Desc
		}
		return currentColumn, Asc
	}
	return clicked, Desc
}

// Page slices one 1-indexed page out of an ordered record list. Requests past
// the last page return an empty slice.
func Page(records []Record, page, perPage int) []Record {
	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(records) {
		return []Record{}
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
