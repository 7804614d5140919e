package lookup

import (
	"strings"
	"time"
)

// RecordType classifies an invoice line item. The upstream feed carries it as a
// free-form string; parsing maps anything unrecognised to TypeOther so the
// aggregation switches stay closed.
type RecordType string

const (
	TypeLabor        RecordType = "Labor"
	TypePart         RecordType = "Part"
	TypeShopSupplies RecordType = "ShopSupplies"
	TypeOther        RecordType = "Other"
)

// ParseRecordType maps an upstream type label to a RecordType.
func ParseRecordType(raw string) RecordType {
	switch strings.TrimSpace(raw) {
	case "Labor":
		return TypeLabor
	case "Part":
		return TypePart
	case "Shop Supplies":
		return TypeShopSupplies
	default:
		return TypeOther
	}
}

// Mode selects which lookup view a query runs against.
type Mode string

const (
	ModeServiceOrder Mode = "service-order"
	ModeParts        Mode = "parts"
)

// SearchField selects which field the parts search term matches against.
type SearchField string

const (
	FieldDescription SearchField = "description"
	FieldPartNumber  SearchField = "partNumber"
)

// Facet is one filterable dimension with a discrete option set.
type Facet string

const (
	FacetCustomer Facet = "customer"
	FacetUnit     Facet = "unit"
	FacetYear     Facet = "year"
	FacetMake     Facet = "make"
	FacetModel    Facet = "model"
)

// Facets lists the supported dimensions in display order.
var Facets = []Facet{FacetCustomer, FacetUnit, FacetYear, FacetMake, FacetModel}

// UnitDetails carries the registry attributes for one unit. A single value is
// shared by pointer across every record referencing that unit; absence (nil)
// means the nickname lookup missed and is a valid state.
type UnitDetails struct {
	UnitID            string `json:"unitId"`
	Nickname          string `json:"nickname"`
	VIN               string `json:"vin"`
	ChassisYear       string `json:"chassisYear"`
	ChassisMake       string `json:"chassisMake"`
	ChassisModel      string `json:"chassisModel"`
	EngineYear        string `json:"engineYear"`
	EngineMake        string `json:"engineMake"`
	EngineModel       string `json:"engineModel"`
	Mileage           string `json:"mileage"`
	LicensePlate      string `json:"licensePlate"`
	LicensePlateState string `json:"licensePlateState"`
}

// Record is one denormalized line item of a shop invoice. Numeric fields are
// already normalized by the loader: absent or unparseable values arrive as 0,
// absent strings as "".
type Record struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	OrderNumber   string     `json:"orderNumber"`
	CustomerName  string     `json:"customerName"`
	UnitID        string     `json:"unitId"`
	Shop          string     `json:"shop"`
	Type          RecordType `json:"type"`
	Item          string     `json:"item"`
	InvoiceDate   time.Time  `json:"invoiceDate"`

	Quantity           float64 `json:"quantity"`
	Rate               float64 `json:"rate"`
	Total              float64 `json:"total"`
	SalesTotal         float64 `json:"salesTotal"`
	PartCost           float64 `json:"partCost"`
	PartsMarginPercent float64 `json:"partsMarginPercent"`
	LaborRate          float64 `json:"laborRate"`
	TechnicianRate     float64 `json:"technicianRate"`
	ActualHours        float64 `json:"actualHours"`

	ServiceDescription       string `json:"serviceDescription"`
	GlobalServiceDescription string `json:"globalServiceDescription"`
	ComplaintDescription     string `json:"complaintDescription"`
	PartDescription          string `json:"partDescription"`
	PartNumber               string `json:"partNumber"`

	// UnitMiles is the odometer reading as reported on the invoice row,
	// kept raw because the feed mixes numbers, "N/A", and junk.
	UnitMiles string `json:"unitMiles"`

	Unit *UnitDetails `json:"unitDetails,omitempty"`
}

// FacetValue returns the record's value for the given dimension. Records
// without resolved unit details contribute "" for year/make/model.
func (r *Record) FacetValue(f Facet) string {
	switch f {
	case FacetCustomer:
		return r.CustomerName
	case FacetUnit:
		return r.UnitID
	case FacetYear:
		if r.Unit != nil {
			return r.Unit.ChassisYear
		}
	case FacetMake:
		if r.Unit != nil {
			return r.Unit.ChassisMake
		}
	case FacetModel:
		if r.Unit != nil {
			return r.Unit.ChassisModel
		}
	}
	return ""
}

// StringSet is an unordered set of facet selections.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Empty reports whether no values are selected. An empty set places no
// constraint on its dimension.
func (s StringSet) Empty() bool { return len(s) == 0 }

// Values returns the members in unspecified order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// FilterState is the full filter selection for one lookup mode.
type FilterState struct {
	From time.Time
	To   time.Time

	Customers StringSet
	Units     StringSet
	Years     StringSet
	Makes     StringSet
	Models    StringSet

	SearchTerm  string
	SearchField SearchField
}

// NewFilterState returns a FilterState with empty selections.
func NewFilterState() FilterState {
	return FilterState{
		Customers:   NewStringSet(),
		Units:       NewStringSet(),
		Years:       NewStringSet(),
		Makes:       NewStringSet(),
		Models:      NewStringSet(),
		SearchField: FieldDescription,
	}
}

// Selection returns the selected set for a dimension.
func (f *FilterState) Selection(facet Facet) StringSet {
	switch facet {
	case FacetCustomer:
		return f.Customers
	case FacetUnit:
		return f.Units
	case FacetYear:
		return f.Years
	case FacetMake:
		return f.Makes
	case FacetModel:
		return f.Models
	}
	return nil
}

// HasActiveFilters reports whether any facet selection or search term is set.
// The UI distinguishes "ready to search" (no filters yet) from an empty result.
func (f *FilterState) HasActiveFilters() bool {
	return !f.Customers.Empty() || !f.Units.Empty() || !f.Years.Empty() ||
		!f.Makes.Empty() || !f.Models.Empty() || strings.TrimSpace(f.SearchTerm) != ""
}

// SessionFilters keeps one independent FilterState per lookup mode so that
// switching tabs never leaks selections across modes.
type SessionFilters struct {
	serviceOrder FilterState
	parts        FilterState
}

// NewSessionFilters returns fresh per-mode filter states.
func NewSessionFilters() *SessionFilters {
	return &SessionFilters{
		serviceOrder: NewFilterState(),
		parts:        NewFilterState(),
	}
}

// ForMode returns the mutable FilterState for the given mode. Unknown modes
// resolve to the service-order state.
func (s *SessionFilters) ForMode(mode Mode) *FilterState {
	if mode == ModeParts {
		return &s.parts
	}
	return &s.serviceOrder
}

// Reset clears one mode's selections without touching the other mode.
func (s *SessionFilters) Reset(mode Mode) {
	*s.ForMode(mode) = NewFilterState()
}
