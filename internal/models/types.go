package models

import "sort"

// BuildingType identifies an entry of the building catalog
type BuildingType string

const (
	Residential    BuildingType = "residential"
	TwoBHK         BuildingType = "TBHK"
	ThreeBHK       BuildingType = "CBHK"
	MiniMart       BuildingType = "mini"
	MacroMart      BuildingType = "macro"
	LargeOffice    BuildingType = "large"
	Bank           BuildingType = "bank"
	FireStation    BuildingType = "firestation"
	Hospital       BuildingType = "Hospital"
	PoliceStation  BuildingType = "Police"
	School         BuildingType = "School"
	ShoppingMall   BuildingType = "SM"
	ConcertHall    BuildingType = "Concert"
	Restaurant     BuildingType = "Restaurent"
	TownHall       BuildingType = "TH"
	Road           BuildingType = "road"
	Market         BuildingType = "market"
	SeasonalMarket BuildingType = "SeasonalMarket"
)

// AllBuildingTypes returns all building types in deterministic order
func AllBuildingTypes() []BuildingType {
	return []BuildingType{
		Residential, TwoBHK, ThreeBHK,
		MiniMart, MacroMart, LargeOffice, Bank,
		FireStation, Hospital, PoliceStation, School,
		ShoppingMall, ConcertHall, Restaurant,
		TownHall, Road, Market, SeasonalMarket,
	}
}

// Coord is an integer grid coordinate
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// BuildingSpec is the catalog entry for one building type
type BuildingSpec struct {
	Name         string  `yaml:"name"`
	Cost         float64 `yaml:"cost"`
	Rate         float64 `yaml:"rate"`
	Footprint    int     `yaml:"footprint"`
	Residents    int     `yaml:"residents,omitempty"`
	Residential  bool    `yaml:"residential,omitempty"`
	Special      bool    `yaml:"special,omitempty"`
	RefundExempt bool    `yaml:"refund_exempt,omitempty"`
}

// Catalog maps building types to their specs
type Catalog map[BuildingType]BuildingSpec

// Spec returns the catalog entry for a type
func (c Catalog) Spec(bt BuildingType) (BuildingSpec, bool) {
	spec, ok := c[bt]
	return spec, ok
}

// Cost returns the placement cost, zero for unknown types
func (c Catalog) Cost(bt BuildingType) float64 {
	return c[bt].Cost
}

// Rate returns the revenue rate, zero for unknown types
func (c Catalog) Rate(bt BuildingType) float64 {
	return c[bt].Rate
}

// Footprint returns the side length of the square footprint (at least 1)
func (c Catalog) Footprint(bt BuildingType) int {
	if n := c[bt].Footprint; n > 0 {
		return n
	}
	return 1
}

// Types returns the catalog's building types in deterministic order.
// Known types come first in AllBuildingTypes order, extra types follow sorted by name.
func (c Catalog) Types() []BuildingType {
	var result []BuildingType
	seen := make(map[BuildingType]bool, len(c))
	for _, bt := range AllBuildingTypes() {
		if _, ok := c[bt]; ok {
			result = append(result, bt)
			seen[bt] = true
		}
	}
	var extra []BuildingType
	for bt := range c {
		if !seen[bt] {
			extra = append(extra, bt)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(result, extra...)
}

// Clone returns an independent copy of the catalog
func (c Catalog) Clone() Catalog {
	clone := make(Catalog, len(c))
	for bt, spec := range c {
		clone[bt] = spec
	}
	return clone
}

// DefaultCatalog returns the reference building catalog
func DefaultCatalog() Catalog {
	return Catalog{
		Residential:    {Name: "House", Cost: 300, Rate: 2, Footprint: 1, Residents: 4, Residential: true},
		TwoBHK:         {Name: "2BHK Block", Cost: 500, Rate: 3, Footprint: 1, Residents: 6, Residential: true},
		ThreeBHK:       {Name: "3BHK Family House", Cost: 800, Rate: 4, Footprint: 1, Residents: 8, Residential: true},
		MiniMart:       {Name: "Mini Mart", Cost: 500, Rate: 5, Footprint: 1},
		MacroMart:      {Name: "Macro Mart", Cost: 700, Rate: 7, Footprint: 1},
		LargeOffice:    {Name: "Large Office", Cost: 1000, Rate: 10, Footprint: 2},
		Bank:           {Name: "Bank", Cost: 2000, Rate: 15, Footprint: 1},
		FireStation:    {Name: "Fire Station", Cost: 300, Footprint: 1},
		Hospital:       {Name: "Hospital", Cost: 500, Footprint: 1},
		PoliceStation:  {Name: "Police Station", Cost: 250, Footprint: 1},
		School:         {Name: "School", Cost: 500, Rate: 4, Footprint: 1},
		ShoppingMall:   {Name: "Shopping Mall", Cost: 500, Rate: 8, Footprint: 2, Special: true},
		ConcertHall:    {Name: "Concert Hall", Cost: 1500, Rate: 12, Footprint: 2, Special: true},
		Restaurant:     {Name: "Restaurant", Cost: 500, Rate: 6, Footprint: 1, Special: true},
		TownHall:       {Name: "Town Hall", Cost: 0, Rate: 100, Footprint: 1},
		Road:           {Name: "Road", Cost: 10, Footprint: 1, RefundExempt: true},
		Market:         {Name: "Market", Cost: 400, Rate: 5, Footprint: 1},
		SeasonalMarket: {Name: "Seasonal Market", Cost: 300, Rate: 4, Footprint: 1},
	}
}
