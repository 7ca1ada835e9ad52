package sim

import (
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// RevenueEngine computes one revenue pass over the grid. Every active stage
// modifier is applied together; each building is counted once, at its origin.
type RevenueEngine struct {
	Catalog     models.Catalog
	Radii       models.RadiusConfig
	Modifiers   models.ModifierConfig
	GracePeriod time.Duration
}

// NewRevenueEngine creates an engine from a config
func NewRevenueEngine(cfg *models.Config) RevenueEngine {
	return RevenueEngine{
		Catalog:     cfg.Catalog,
		Radii:       cfg.Radii,
		Modifiers:   cfg.Modifiers,
		GracePeriod: cfg.GracePeriod,
	}
}

// Contribution is the share of one building in a pass
type Contribution struct {
	Origin models.Coord
	Type   models.BuildingType
	Fast   float64
	Slow   float64
	Deduct float64
}

// Amount returns fast + slow - deduction
func (c Contribution) Amount() float64 {
	return c.Fast + c.Slow - c.Deduct
}

// RevenueReport is the outcome of a pass
type RevenueReport struct {
	Total         float64
	Gross         float64
	Contributions []Contribution
	Burned        []models.Coord
}

// Compute runs a pass. Buildings left unprotected during the burn stage are
// marked burned as a side effect and listed in the report.
func (e RevenueEngine) Compute(grid *Grid, index ProximityIndex, state *SimulationState) RevenueReport {
	var report RevenueReport

	grid.Each(func(t *Tile) {
		if !t.Owns() {
			return
		}
		c, burned := e.contribution(t.Building(), index, state)
		if burned {
			report.Burned = append(report.Burned, t.Coord())
		}
		report.Contributions = append(report.Contributions, c)
		report.Gross += c.Amount()
	})

	total := report.Gross
	if state.Timeline.Active(StageConcertStoppage) {
		total *= e.Modifiers.Charity
	}
	if total < 0 {
		total = 0
	}
	report.Total = total
	return report
}

func (e RevenueEngine) contribution(b *Building, index ProximityIndex, state *SimulationState) (Contribution, bool) {
	c := Contribution{Origin: b.Origin, Type: b.Type}
	spec := e.Catalog[b.Type]
	tl := &state.Timeline
	x, y := b.Origin.X, b.Origin.Y

	if tl.Active(StageHospitalReduction) && spec.Residential &&
		!index.Covered(ProximityHospital, x, y, e.Radii.Hospital) {
		return c, false
	}
	if b.Burned {
		return c, false
	}
	if closed(b.Type, tl) {
		return c, false
	}

	age := b.Age(state.Clock)
	rate := spec.Rate

	// unprotected: no police past the grace period and no fire station
	burned := false
	if index.Covered(ProximityPolice, x, y, e.Radii.Police) || state.Clock < e.GracePeriod {
		c.Fast = rate * age.Minutes()
	} else if tl.Active(StageBurn) && !index.Covered(ProximityFire, x, y, e.Radii.Fire) {
		b.Burned = true
		burned = true
	}

	mult := 1.0
	if tl.Active(StagePlague) && !state.Vaccinated {
		mult *= e.Modifiers.Plague
	}
	if tl.Active(StageSeasonalReduction) && b.Type == models.SeasonalMarket {
		mult *= e.Modifiers.Seasonal
	}
	if tl.Active(StageHouseReduction) && spec.Residential {
		mult *= e.Modifiers.HouseRaid
	}
	if tl.Active(StageHospitalReduction) && spec.Special && !b.Stabilized {
		mult *= e.Modifiers.UnstableSpecial
	}
	c.Slow = rate * (age.Hours() / hoursPerDay) * mult

	if tl.Active(StageMarketDeduction) && !state.CashPaid && b.Type == models.Market {
		c.Deduct = e.Modifiers.MarketDeduction
	}
	return c, burned
}

// closed reports whether a stage shuts the building for the rest of the session
func closed(bt models.BuildingType, tl *Timeline) bool {
	switch bt {
	case models.Bank, models.School:
		return tl.Active(StageFestival)
	case models.ConcertHall:
		return tl.Active(StageConcertStoppage)
	}
	return false
}
