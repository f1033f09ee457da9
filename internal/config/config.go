package config

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultYAML []byte

type Source struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

type Config struct {
	Paths struct {
		MasterFile string `yaml:"master_file"`
		HistoryDB  string `yaml:"history_db"`
	} `yaml:"paths"`

	Sources struct {
		JOE Source `yaml:"joe"`
		EJM Source `yaml:"ejm"`
	} `yaml:"sources"`

	Filters struct {
		ExcludedCountries []string `yaml:"excluded_countries"`
	} `yaml:"filters"`

	Workdirs map[string]string `yaml:"workdirs"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic("config: bad embedded default: " + err.Error())
	}
	return cfg
}

// Load reads path over the defaults, so a partial file only overrides
// what it names.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
