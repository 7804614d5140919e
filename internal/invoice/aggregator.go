package invoice

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fleetview/fleetview/internal/lookup"
)

// generalServiceLabel groups line items whose service description is blank.
const generalServiceLabel = "General Service"

// qualityControlLabel is the global service description of quality-control
// labor. QC labor merges into a single line regardless of rate; this is a
// billing convention specific to that service, not a general rule.
const qualityControlLabel = "QUALITY CONTROL"

type serviceGroup struct {
	description string
	complaint   string
	labor       []Line
	parts       []Line
	partKeys    []string
}

// Aggregate builds the invoice detail for invoiceNumber from the full record
// collection. The second return is false when the invoice has no records.
//
// Totals follow the billing data, not symmetry: partsTotal sums the pre-tax
// total column because margin reporting must exclude tax, while invoiceTotal
// prefers salesTotal per record and falls back to total.
func Aggregate(records []lookup.Record, invoiceNumber string) (Detail, bool) {
	var matched []lookup.Record
	for i := range records {
		if records[i].InvoiceNumber == invoiceNumber {
			matched = append(matched, records[i])
		}
	}
	if len(matched) == 0 {
		return Detail{}, false
	}

	var (
		groups     []*serviceGroup
		groupIndex = make(map[string]*serviceGroup)

		shopSuppliesTotal float64
		partsTotal        float64
		invoiceTotal      float64
	)

	for i := range matched {
		r := &matched[i]

		if r.Type == lookup.TypeShopSupplies {
			shopSuppliesTotal += r.Total
			continue
		}
		invoiceTotal += amountOf(r)
		if r.Type == lookup.TypePart {
			partsTotal += r.Total
		}

		desc := r.ServiceDescription
		if desc == "" {
			desc = generalServiceLabel
		}
		group, ok := groupIndex[desc]
		if !ok {
			group = &serviceGroup{description: desc, complaint: r.ComplaintDescription}
			groupIndex[desc] = group
			groups = append(groups, group)
		}

		switch r.Type {
		case lookup.TypeLabor:
			mergeLabor(group, r, desc)
		case lookup.TypePart:
			mergePart(group, r)
		}
	}

	lines, laborLines, partLines := flatten(groups)

	var laborTotal float64
	for i := range laborLines {
		laborTotal += laborLines[i].Amount
	}

	return Detail{
		Header:                 buildHeader(matched),
		Lines:                  lines,
		LaborTotal:             laborTotal,
		PartsTotal:             partsTotal,
		ShopSuppliesTotal:      shopSuppliesTotal,
		InvoiceTotal:           invoiceTotal,
		LaborEfficiencyPercent: invoiceEfficiency(laborLines),
		PartsMarginPercent:     weightedPartsMargin(partLines),
	}, true
}

// amountOf prefers the taxed sales total and falls back to the pre-tax total
// when the feed left it at zero.
func amountOf(r *lookup.Record) float64 {
	if r.SalesTotal != 0 {
		return r.SalesTotal
	}
	return r.Total
}

func mergeLabor(group *serviceGroup, r *lookup.Record, desc string) {
	qc := r.GlobalServiceDescription == qualityControlLabel
	for i := range group.labor {
		line := &group.labor[i]
		var same bool
		if qc {
			same = line.QualityControl
		} else {
			same = !line.QualityControl && line.LaborRate == r.LaborRate
		}
		if same {
			line.Quantity += r.Quantity
			line.Amount += r.Total
			line.ActualHours += r.ActualHours
			// Displayed rate stays at the bucket's first-seen value.
			return
		}
	}
	group.labor = append(group.labor, Line{
		Kind:           KindLabor,
		Description:    desc,
		Quantity:       r.Quantity,
		Rate:           r.Rate,
		Amount:         amountOf(r),
		LaborRate:      r.LaborRate,
		TechnicianRate: r.TechnicianRate,
		ActualHours:    r.ActualHours,
		QualityControl: qc,
	})
}

func mergePart(group *serviceGroup, r *lookup.Record) {
	desc := r.PartDescription
	if desc == "" {
		desc = "Part"
	}
	// Same part at a different price stays a separate line; the merge key
	// includes the unit rate rounded to cents.
	key := desc + "|" + r.PartNumber + "|" + strconv.FormatFloat(r.Rate, 'f', 2, 64)
	for i, existing := range group.partKeys {
		if existing == key {
			line := &group.parts[i]
			line.Quantity += r.Quantity
			line.Amount += amountOf(r)
			// Unit cost and margin percent are per-unit figures carried from
			// the first occurrence, never summed.
			return
		}
	}
	group.partKeys = append(group.partKeys, key)
	group.parts = append(group.parts, Line{
		Kind:               KindPart,
		Description:        desc,
		PartNumber:         r.PartNumber,
		Quantity:           r.Quantity,
		Rate:               r.Rate,
		Amount:             amountOf(r),
		PartCost:           r.PartCost,
		PartsMarginPercent: r.PartsMarginPercent,
	})
}

// flatten orders groups first-seen and marks each line's position within its
// group for bordered-table rendering.
func flatten(groups []*serviceGroup) (all, labor, parts []Line) {
	for gi, group := range groups {
		hasComplaint := group.complaint != ""
		if hasComplaint {
			all = append(all, Line{
				Kind:         KindComplaint,
				Description:  group.complaint,
				FirstInGroup: true,
				GroupIndex:   gi,
			})
		}
		for i := range group.labor {
			line := group.labor[i]
			if line.Quantity > 0 && line.ActualHours > 0 {
				eff := line.Quantity / line.ActualHours * 100
				line.Efficiency = &eff
			}
			line.FirstInGroup = !hasComplaint && i == 0
			line.LastInGroup = i == len(group.labor)-1 && len(group.parts) == 0
			line.GroupIndex = gi
			all = append(all, line)
			labor = append(labor, line)
		}
		for i := range group.parts {
			line := group.parts[i]
			line.FirstInGroup = !hasComplaint && len(group.labor) == 0 && i == 0
			line.LastInGroup = i == len(group.parts)-1
			line.GroupIndex = gi
			all = append(all, line)
			parts = append(parts, line)
		}
	}
	return all, labor, parts
}

// invoiceEfficiency is invoiced hours over actual hours across all labor
// lines, 0 when no actual hours were recorded.
func invoiceEfficiency(labor []Line) float64 {
	var billed, actual float64
	for i := range labor {
		billed += labor[i].Quantity
		actual += labor[i].ActualHours
	}
	if actual <= 0 {
		return 0
	}
	return billed / actual * 100
}

// weightedPartsMargin averages each part line's margin percent weighted by
// that line's amount, over lines with positive amount.
func weightedPartsMargin(parts []Line) float64 {
	var totalAmount float64
	for i := range parts {
		if parts[i].Amount > 0 {
			totalAmount += parts[i].Amount
		}
	}
	if totalAmount <= 0 {
		return 0
	}
	var weighted float64
	for i := range parts {
		if parts[i].Amount > 0 {
			weighted += parts[i].PartsMarginPercent * (parts[i].Amount / totalAmount)
		}
	}
	return weighted
}

func buildHeader(matched []lookup.Record) Header {
	first := &matched[0]
	h := Header{
		InvoiceNumber: first.InvoiceNumber,
		OrderNumber:   first.OrderNumber,
		Customer:      first.CustomerName,
		Unit:          first.UnitID,
		Shop:          first.Shop,
		InvoiceDate:   first.InvoiceDate,
		Mileage:       FormatMileage(bestMileage(matched)),
	}
	if first.Unit != nil {
		h.ChassisYear = first.Unit.ChassisYear
		h.ChassisMake = first.Unit.ChassisMake
		h.ChassisModel = first.Unit.ChassisModel
	}
	return h
}

// bestMileage scans the invoice's records for the most trustworthy odometer
// reading: the largest parseable value, with blank, "N/A", and the literal
// "1" excluded. The feed writes "1" as a placeholder on some rows, so it is
// treated as missing rather than as a one-mile truck.
func bestMileage(matched []lookup.Record) string {
	var candidates []string
	for i := range matched {
		raw := matched[i].UnitMiles
		if raw == "" && matched[i].Unit != nil {
			raw = matched[i].Unit.Mileage
		}
		if raw == "" || raw == "1" || raw == "N/A" {
			continue
		}
		candidates = append(candidates, raw)
	}
	if len(candidates) == 0 {
		return matched[0].UnitMiles
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, aok := parseMileage(candidates[i])
		b, bok := parseMileage(candidates[j])
		if aok && bok {
			return a > b
		}
		return aok && !bok
	})
	return candidates[0]
}

// parseMileage tolerates the quoting and comma grouping the feed produces.
func parseMileage(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '`', ',', ' ', '\t':
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
