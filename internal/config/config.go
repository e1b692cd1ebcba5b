package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Size struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Config is the player's runtime configuration.
type Config struct {
	Addr     string `yaml:"addr"`      // editor/health listen address, e.g. :8080
	FPS      int    `yaml:"fps"`
	Project  string `yaml:"project"`   // path to project YAML
	LogLevel string `yaml:"log_level"` // zerolog level name
	Paused   bool   `yaml:"start_paused"`

	Window Size `yaml:"window"`
	Screen Size `yaml:"screen"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
