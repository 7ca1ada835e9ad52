package sim

import (
	"testing"

	"github.com/napolitain/citysim/internal/models"
)

// newTestConfig returns the default economy on a size x size grid without
// the town hall
func newTestConfig(size int, budget float64) *models.Config {
	cfg := models.DefaultConfig()
	cfg.Size = size
	cfg.Budget = budget
	cfg.TownHall = false
	return cfg
}

func newTestCity(t testing.TB, size int, budget float64) (*City, *Recorder) {
	t.Helper()
	return newTestCityWithConfig(t, newTestConfig(size, budget))
}

func newTestCityWithConfig(t testing.TB, cfg *models.Config) (*City, *Recorder) {
	t.Helper()
	c, err := NewCity(cfg)
	if err != nil {
		t.Fatalf("NewCity: %v", err)
	}
	rec := &Recorder{}
	c.Subscribe(rec)
	return c, rec
}

// earlyTimeline moves every stage threshold to the given minute
func earlyTimeline(minutes int) models.TimelineConfig {
	return models.TimelineConfig{
		RobberyNotice:     minutes,
		Burn:              minutes,
		HospitalReduction: minutes,
		HouseReduction:    minutes,
		Plague:            minutes,
		MarketDeduction:   minutes,
		Festival:          minutes,
		ConcertStoppage:   minutes,
		SeasonalReduction: minutes,
	}
}

// quietTimeline pushes every stage out of reach
func quietTimeline() models.TimelineConfig {
	return earlyTimeline(100000)
}

func mustPlace(t testing.TB, c *City, x, y int, bt models.BuildingType) {
	t.Helper()
	if err := c.PlaceBuilding(x, y, bt); err != nil {
		t.Fatalf("PlaceBuilding(%d, %d, %s): %v", x, y, bt, err)
	}
}
