package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/napolitain/citysim/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigDataDir(t *testing.T) {
	cfg, err := LoadConfigDir("../../data")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Size != 25 || cfg.Budget != 4000 {
		t.Errorf("size/budget = %d/%.0f, want 25/4000", cfg.Size, cfg.Budget)
	}
	if cfg.StepDuration != time.Second || cfg.RevenueInterval != time.Minute {
		t.Errorf("step/interval = %s/%s", cfg.StepDuration, cfg.RevenueInterval)
	}
	if cfg.Timeline.SeasonalReduction != 135 {
		t.Errorf("seasonal threshold = %d, want 135", cfg.Timeline.SeasonalReduction)
	}
	if len(cfg.Catalog) != len(models.AllBuildingTypes()) {
		t.Errorf("catalog has %d entries, want defaults", len(cfg.Catalog))
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeFile(t, "city.yaml", `
size: 10
budget: 1500
step: 500ms
catalog:
  kiosk:
    name: Kiosk
    cost: 50
    rate: 1
    footprint: 1
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Size != 10 || cfg.Budget != 1500 || cfg.StepDuration != 500*time.Millisecond {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RevenueInterval != time.Minute {
		t.Errorf("revenue interval = %s, want default 1m", cfg.RevenueInterval)
	}
	if _, ok := cfg.Catalog["kiosk"]; !ok {
		t.Error("custom catalog entry missing")
	}
	if _, ok := cfg.Catalog[models.Residential]; !ok {
		t.Error("default catalog entries dropped")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "size: [", "parsing config YAML"},
		{"invalid size", "size: 0", "grid size"},
		{"bad thresholds", "timeline:\n  burn: 50\n  hospital_reduction: 40", "non-decreasing"},
		{"refund ratio", "prices:\n  refund_ratio: 2", "refund ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "city.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Size != models.DefaultConfig().Size {
		t.Error("empty path should return defaults")
	}
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("../../data/scenarios/demo.yaml")
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}
	if s.Name != "demo" || s.Duration != 140*time.Minute || !s.AcceptPrompts {
		t.Errorf("scenario header = %+v", s)
	}
	if len(s.Actions) == 0 {
		t.Fatal("no actions loaded")
	}
	first := s.Actions[0]
	if first.Action != models.ActionPlace || first.Type != models.PoliceStation {
		t.Errorf("first action = %+v", first)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no duration", "actions: []", "duration"},
		{"unknown action", "duration: 1m\nactions:\n  - {at: 1s, action: explode, x: 0, y: 0}", "unknown action"},
		{"place without type", "duration: 1m\nactions:\n  - {at: 1s, action: place, x: 0, y: 0}", "building type"},
		{"after end", "duration: 1m\nactions:\n  - {at: 2m, action: bulldoze, x: 0, y: 0}", "after the scenario ends"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, "s.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
