package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/citysim/internal/models"
)

// ConfigFile is the city config file name inside a data directory
const ConfigFile = "city.yaml"

// LoadConfig reads a YAML city config and overlays it on the defaults.
// An empty path returns the defaults. A catalog entry in the file replaces
// the built-in entry of the same type.
func LoadConfig(path string) (*models.Config, error) {
	cfg := models.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := models.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigDir loads ConfigFile from a data directory
func LoadConfigDir(dataDir string) (*models.Config, error) {
	return LoadConfig(filepath.Join(dataDir, ConfigFile))
}

// LoadScenario reads and validates a YAML scenario script
func LoadScenario(path string) (*models.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s models.Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	if err := models.ValidateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}
