package lookuphttp

import (
	"github.com/fleetview/fleetview/internal/lookup"
	"github.com/fleetview/fleetview/internal/shared"
)

// RecordRow is one table row of the lookup results.
type RecordRow struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	OrderNumber   string  `json:"orderNumber"`
	Customer      string  `json:"customer"`
	Unit          string  `json:"unit"`
	Shop          string  `json:"shop"`
	InvoiceDate   string  `json:"invoiceDate"`
	Description   string  `json:"description"`
	PartNumber    string  `json:"partNumber,omitempty"`
	Quantity      float64 `json:"quantity"`
	Rate          float64 `json:"rate"`
	Total         float64 `json:"total"`
	ChassisYear   string  `json:"chassisYear,omitempty"`
	ChassisMake   string  `json:"chassisMake,omitempty"`
	ChassisModel  string  `json:"chassisModel,omitempty"`
}

// RecordsResponse is the paged result envelope.
type RecordsResponse struct {
	Rows       []RecordRow       `json:"rows"`
	Pagination shared.Pagination `json:"pagination"`
	SnapshotID string            `json:"snapshotId"`
}

// FacetsResponse carries every dimension's option list.
type FacetsResponse struct {
	Options    map[lookup.Facet][]string `json:"options"`
	SnapshotID string                    `json:"snapshotId"`
}

type statusViewModel struct {
	Status string       `json:"status"`
	Stats  lookup.Stats `json:"stats"`
	Error  string       `json:"error,omitempty"`
}

func recordsViewModel(result lookup.PageResult, mode lookup.Mode) RecordsResponse {
	rows := make([]RecordRow, 0, len(result.Records))
	for i := range result.Records {
		r := &result.Records[i]
		row := RecordRow{
			InvoiceNumber: r.InvoiceNumber,
			OrderNumber:   r.OrderNumber,
			Customer:      r.CustomerName,
			Unit:          r.UnitID,
			Shop:          r.Shop,
			Quantity:      r.Quantity,
			Rate:          r.Rate,
			Total:         r.Total,
		}
		if !r.InvoiceDate.IsZero() {
			row.InvoiceDate = r.InvoiceDate.Format("2006-01-02")
		}
		if mode == lookup.ModeParts {
			row.Description = r.PartDescription
			row.PartNumber = r.PartNumber
		} else {
			row.Description = r.ServiceDescription
		}
		if r.Unit != nil {
			row.ChassisYear = r.Unit.ChassisYear
			row.ChassisMake = r.Unit.ChassisMake
			row.ChassisModel = r.Unit.ChassisModel
		}
		rows = append(rows, row)
	}
	return RecordsResponse{
		Rows:       rows,
		Pagination: result.Pagination,
		SnapshotID: result.SnapshotID,
	}
}

func facetsViewModel(options map[lookup.Facet][]string, snapshotID string) FacetsResponse {
	return FacetsResponse{Options: options, SnapshotID: snapshotID}
}
