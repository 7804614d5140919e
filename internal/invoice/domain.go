// Package invoice aggregates a single invoice's line items into the grouped
// labor/parts matrix shown on the drill-down view.
package invoice

import (
	"time"
)

// LineKind discriminates the rendered row types.
type LineKind string

const (
	KindComplaint LineKind = "complaint"
	KindLabor     LineKind = "labor"
	KindPart      LineKind = "part"
)

// Line is one rendered row of the invoice detail. Labor rows are merged per
// rate bucket, part rows per (description, part number, cent-rounded rate).
// Complaint rows are informational and carry no amounts.
type Line struct {
	Kind        LineKind `json:"kind"`
	Description string   `json:"description"`
	PartNumber  string   `json:"partNumber,omitempty"`

	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`

	LaborRate      float64 `json:"laborRate,omitempty"`
	TechnicianRate float64 `json:"technicianRate,omitempty"`
	ActualHours    float64 `json:"actualHours,omitempty"`

	PartCost           float64 `json:"partCost,omitempty"`
	PartsMarginPercent float64 `json:"partsMarginPercent,omitempty"`

	// Efficiency is invoiced hours over actual hours, percent. Nil when the
	// denominator is missing; an unknown efficiency is not 0%.
	Efficiency *float64 `json:"efficiency,omitempty"`

	QualityControl bool `json:"qualityControl,omitempty"`

	FirstInGroup bool `json:"firstInGroup"`
	LastInGroup  bool `json:"lastInGroup"`
	GroupIndex   int  `json:"groupIndex"`
}

// Header carries the invoice-level identity shown above the item table.
type Header struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	OrderNumber   string    `json:"orderNumber"`
	Customer      string    `json:"customer"`
	Unit          string    `json:"unit"`
	Shop          string    `json:"shop"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	ChassisYear   string    `json:"chassisYear,omitempty"`
	ChassisMake   string    `json:"chassisMake,omitempty"`
	ChassisModel  string    `json:"chassisModel,omitempty"`
	Mileage       string    `json:"mileage"`
}

// Detail is the full aggregation result for one invoice.
type Detail struct {
	Header Header `json:"header"`
	Lines  []Line `json:"lines"`

	LaborTotal        float64 `json:"laborTotal"`
	PartsTotal        float64 `json:"partsTotal"`
	ShopSuppliesTotal float64 `json:"shopSuppliesTotal"`
	InvoiceTotal      float64 `json:"invoiceTotal"`

	LaborEfficiencyPercent float64 `json:"laborEfficiencyPercent"`
	PartsMarginPercent     float64 `json:"partsMarginPercent"`
}
