package models

import (
	"fmt"
	"time"
)

// Config holds every tunable of a city economy
type Config struct {
	Size     int     `yaml:"size"`
	Budget   float64 `yaml:"budget"`
	TownHall bool    `yaml:"town_hall"`

	// StepDuration is the simulated time covered by one discrete step
	StepDuration    time.Duration `yaml:"step"`
	RevenueInterval time.Duration `yaml:"revenue_interval"`
	// GracePeriod is the session time during which every building earns
	// the proximity fast-path revenue regardless of police coverage
	GracePeriod time.Duration `yaml:"grace_period"`
	// DemolitionLockoutSteps is converted to simulated time with StepDuration
	DemolitionLockoutSteps int `yaml:"demolition_lockout_steps"`

	Radii     RadiusConfig   `yaml:"radii"`
	Timeline  TimelineConfig `yaml:"timeline"`
	Modifiers ModifierConfig `yaml:"modifiers"`
	Prices    PriceConfig    `yaml:"prices"`
	Catalog   Catalog        `yaml:"catalog"`
}

// RadiusConfig holds the Chebyshev coverage radius of each service building
type RadiusConfig struct {
	Police   int `yaml:"police"`
	Fire     int `yaml:"fire"`
	Hospital int `yaml:"hospital"`
}

// TimelineConfig holds stage thresholds in minutes of session time
type TimelineConfig struct {
	RobberyNotice     int `yaml:"robbery_notice"`
	Burn              int `yaml:"burn"`
	HospitalReduction int `yaml:"hospital_reduction"`
	HouseReduction    int `yaml:"house_reduction"`
	Plague            int `yaml:"plague"`
	MarketDeduction   int `yaml:"market_deduction"`
	Festival          int `yaml:"festival"`
	ConcertStoppage   int `yaml:"concert_stoppage"`
	SeasonalReduction int `yaml:"seasonal_reduction"`
}

// Ordered returns the stage thresholds in activation order (notice excluded)
func (t TimelineConfig) Ordered() []int {
	return []int{
		t.Burn, t.HospitalReduction, t.HouseReduction, t.Plague,
		t.MarketDeduction, t.Festival, t.ConcertStoppage, t.SeasonalReduction,
	}
}

// ModifierConfig holds the revenue modifiers applied by active stages
type ModifierConfig struct {
	Plague          float64 `yaml:"plague"`
	Seasonal        float64 `yaml:"seasonal"`
	HouseRaid       float64 `yaml:"house_raid"`
	UnstableSpecial float64 `yaml:"unstable_special"`
	Charity         float64 `yaml:"charity"`
	MarketDeduction float64 `yaml:"market_deduction"`
}

// PriceConfig holds one-off amounts charged or credited by the city
type PriceConfig struct {
	Vaccine        float64 `yaml:"vaccine"`
	CashPayment    float64 `yaml:"cash_payment"`
	FestivalCredit float64 `yaml:"festival_credit"`
	Repair         float64 `yaml:"repair"`
	Stabilize      float64 `yaml:"stabilize"`
	RefundRatio    float64 `yaml:"refund_ratio"`
}

// MaxGridSize bounds the grid side length; a city holds MaxGridSize^2 tiles
const MaxGridSize = 512

// DefaultConfig returns the reference economy
func DefaultConfig() *Config {
	return &Config{
		Size:                   25,
		Budget:                 4000,
		TownHall:               true,
		StepDuration:           time.Second,
		RevenueInterval:        time.Minute,
		GracePeriod:            2 * time.Minute,
		DemolitionLockoutSteps: 180,
		Radii: RadiusConfig{
			Police:   5,
			Fire:     5,
			Hospital: 2,
		},
		Timeline: TimelineConfig{
			RobberyNotice:     15,
			Burn:              30,
			HospitalReduction: 45,
			HouseReduction:    60,
			Plague:            75,
			MarketDeduction:   90,
			Festival:          105,
			ConcertStoppage:   120,
			SeasonalReduction: 135,
		},
		Modifiers: ModifierConfig{
			Plague:          0.75,
			Seasonal:        0.5,
			HouseRaid:       1.0,
			UnstableSpecial: 0.5,
			Charity:         0.9,
			MarketDeduction: 100,
		},
		Prices: PriceConfig{
			Vaccine:        2500,
			CashPayment:    1000,
			FestivalCredit: 500,
			Repair:         50,
			Stabilize:      100,
			RefundRatio:    0.5,
		},
		Catalog: DefaultCatalog(),
	}
}

// DemolitionLockout returns the placement lockout after a demolition
func (c *Config) DemolitionLockout() time.Duration {
	return time.Duration(c.DemolitionLockoutSteps) * c.StepDuration
}

// Clone returns a deep copy of the config
func (c *Config) Clone() *Config {
	clone := *c
	clone.Catalog = c.Catalog.Clone()
	return &clone
}

// ValidateConfig checks that a config describes a playable city
func ValidateConfig(c *Config) error {
	if c.Size <= 0 {
		return fmt.Errorf("grid size must be positive, got %d", c.Size)
	}
	if c.Size > MaxGridSize {
		return fmt.Errorf("grid size %d exceeds the maximum of %d", c.Size, MaxGridSize)
	}
	if c.Budget < 0 {
		return fmt.Errorf("starting budget must not be negative, got %.2f", c.Budget)
	}
	if c.StepDuration <= 0 {
		return fmt.Errorf("step duration must be positive, got %s", c.StepDuration)
	}
	if c.RevenueInterval < c.StepDuration {
		return fmt.Errorf("revenue interval %s is shorter than one step (%s)", c.RevenueInterval, c.StepDuration)
	}
	if c.DemolitionLockoutSteps < 0 {
		return fmt.Errorf("demolition lockout must not be negative, got %d", c.DemolitionLockoutSteps)
	}
	if c.Radii.Police < 0 || c.Radii.Fire < 0 || c.Radii.Hospital < 0 {
		return fmt.Errorf("proximity radii must not be negative: %+v", c.Radii)
	}

	thresholds := c.Timeline.Ordered()
	for i, minutes := range thresholds {
		if minutes < 0 {
			return fmt.Errorf("stage threshold %d is negative (%d min)", i, minutes)
		}
		if i > 0 && minutes < thresholds[i-1] {
			return fmt.Errorf("stage thresholds must be non-decreasing: %d min follows %d min", minutes, thresholds[i-1])
		}
	}

	if len(c.Catalog) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	for _, bt := range c.Catalog.Types() {
		spec := c.Catalog[bt]
		if spec.Footprint < 1 {
			return fmt.Errorf("building %s: footprint must be at least 1, got %d", bt, spec.Footprint)
		}
		if spec.Footprint > c.Size {
			return fmt.Errorf("building %s: footprint %d does not fit a %dx%d grid", bt, spec.Footprint, c.Size, c.Size)
		}
		if spec.Cost < 0 {
			return fmt.Errorf("building %s: cost must not be negative", bt)
		}
		if spec.Rate < 0 {
			return fmt.Errorf("building %s: rate must not be negative", bt)
		}
	}

	if c.TownHall {
		th, ok := c.Catalog[TownHall]
		if !ok {
			return fmt.Errorf("town hall bootstrap enabled but %q is not in the catalog", TownHall)
		}
		if th.Cost > c.Budget {
			return fmt.Errorf("starting budget %.2f cannot pay for the town hall (%.2f)", c.Budget, th.Cost)
		}
	}

	if c.Prices.RefundRatio < 0 || c.Prices.RefundRatio > 1 {
		return fmt.Errorf("refund ratio must be within [0,1], got %.2f", c.Prices.RefundRatio)
	}

	return nil
}
