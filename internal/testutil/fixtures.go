package testutil

import (
	"embed"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/fleet-ctl/internal/config"
	"github.com/firefly-engineering/fleet-ctl/internal/fleet"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadSpecsFixture parses a configuration document fixture.
func LoadSpecsFixture(name string) ([]fleet.ContainerSpec, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return fleet.Parse(data, name)
}

// LoadSettingsFixture decodes a settings fixture on top of the defaults.
// FLEET_* overrides are not applied.
func LoadSettingsFixture(name string) (*config.Settings, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	settings := config.DefaultSettings()
	if _, err := toml.Decode(string(data), settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ValidSpecs returns the three-container fleet fixture.
func ValidSpecs() ([]fleet.ContainerSpec, error) {
	return LoadSpecsFixture("devcontainers.json")
}

// ValidSettings returns the settings fixture.
func ValidSettings() (*config.Settings, error) {
	return LoadSettingsFixture("settings.toml")
}
