package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root service configuration.
type Config struct {
	HTTP      HTTPConfig       `json:"http"`
	Storage   StorageConfig    `json:"storage"`
	Dispatch  DispatchConfig   `json:"dispatch"`
	Receiving ReceivingConfig  `json:"receiving"`
	Metrics   MetricsConfig    `json:"metrics"`
	Locations []LocationConfig `json:"locations"`
}

// LocationConfig seeds a storage location at startup.
type LocationConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxCapacity int    `json:"max_capacity"`
}

// Load reads the configuration file (yaml or json) and applies PD_ prefixed
// environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.HTTP.SetDefaults()
	cfg.Storage.SetDefaults()
	cfg.Dispatch.SetDefaults()
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	for _, loc := range cfg.Locations {
		if loc.ID == "" || loc.MaxCapacity <= 0 {
			return nil, fmt.Errorf("location %q: id and a positive max_capacity are required", loc.ID)
		}
	}
	return &cfg, nil
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
