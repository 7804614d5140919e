package source

import (
	"strings"

	"github.com/fleetview/fleetview/internal/lookup"
)

// UnitRegistry resolves unit nicknames to their registry details. Keys are
// lowercased and trimmed so "  Truck 12 " and "truck 12" hit the same unit.
// Each unit is materialized once; every record joined to it shares the same
// *UnitDetails.
type UnitRegistry struct {
	byNickname map[string]*lookup.UnitDetails
}

// BuildUnitRegistry indexes the unit payload by normalized nickname. Units
// without a nickname cannot be joined and are skipped.
func BuildUnitRegistry(raws []RawRecord) *UnitRegistry {
	reg := &UnitRegistry{byNickname: make(map[string]*lookup.UnitDetails, len(raws))}
	for _, raw := range raws {
		nickname := strings.TrimSpace(raw.str("nickname"))
		if nickname == "" {
			continue
		}
		reg.byNickname[strings.ToLower(nickname)] = &lookup.UnitDetails{
			UnitID:            raw.str("unitId"),
			Nickname:          nickname,
			VIN:               raw.str("vin"),
			ChassisYear:       raw.str("chassisYear"),
			ChassisMake:       raw.str("chassisMake"),
			ChassisModel:      raw.str("chassisModel"),
			EngineYear:        raw.str("engineYear"),
			EngineMake:        raw.str("engineMake"),
			EngineModel:       raw.str("engineModel"),
			Mileage:           raw.str("mileage"),
			LicensePlate:      raw.str("licensePlate"),
			LicensePlateState: raw.str("licensePlateState"),
		}
	}
	return reg
}

// Lookup resolves a nickname, returning nil on a miss.
func (r *UnitRegistry) Lookup(nickname string) *lookup.UnitDetails {
	if r == nil {
		return nil
	}
	return r.byNickname[strings.ToLower(strings.TrimSpace(nickname))]
}

// Len reports how many units are indexed.
func (r *UnitRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byNickname)
}
