package mesh

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the experiment configuration from a YAML file.
// Missing defaults fields fall back to DefaultParameters.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates configuration YAML
func ParseConfig(data []byte) (*Config, error) {
	config := Config{Defaults: DefaultParameters()}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if len(config.Experiments) == 0 {
		return nil, fmt.Errorf("at least one experiment must be defined")
	}

	names := make(map[string]bool, len(config.Experiments))
	for i, e := range config.Experiments {
		if e.Name == "" {
			return nil, fmt.Errorf("experiments[%d].name is required", i)
		}
		if names[e.Name] {
			return nil, fmt.Errorf("experiments[%d]: duplicate name %q", i, e.Name)
		}
		names[e.Name] = true

		if e.Preset == "" && len(e.Segments) == 0 && len(e.Points) == 0 {
			return nil, fmt.Errorf("experiments[%d] (%s): one of preset, segments or points is required", i, e.Name)
		}
		if e.Preset != "" && !isPreset(e.Preset) {
			return nil, fmt.Errorf("experiments[%d] (%s): unknown preset %q", i, e.Name, e.Preset)
		}
		if _, err := StrategyByName(config.ParametersFor(&config.Experiments[i]).Strategy); err != nil {
			return nil, fmt.Errorf("experiments[%d] (%s): %w", i, e.Name, err)
		}
		if _, err := ParseBoundary(config.ParametersFor(&config.Experiments[i]).Boundary); err != nil {
			return nil, fmt.Errorf("experiments[%d] (%s): %w", i, e.Name, err)
		}
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// PresetConfig builds an in-memory config with one experiment per named preset
func PresetConfig(presets []string, params Parameters) (*Config, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: no layout presets given", ErrInvalidConfig)
	}

	config := &Config{Defaults: params}
	for _, preset := range presets {
		if !isPreset(preset) {
			return nil, fmt.Errorf("%w: unknown preset %q (want one of %s)",
				ErrInvalidConfig, preset, strings.Join(PresetNames(), ", "))
		}
		config.Experiments = append(config.Experiments, Experiment{Name: presetLabel(preset), Preset: preset})
	}
	return config, nil
}

func isPreset(name string) bool {
	for _, p := range PresetNames() {
		if p == name {
			return true
		}
	}
	return false
}

func presetLabel(preset string) string {
	return strings.ToUpper(preset[:1]) + preset[1:]
}
