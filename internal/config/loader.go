package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ServersDir  string `json:"servers_dir" yaml:"servers_dir" toml:"servers_dir"`
	VersionsDir string `json:"versions_dir" yaml:"versions_dir" toml:"versions_dir"`
	JarName     string `json:"jar_name" yaml:"jar_name" toml:"jar_name"`
	JavaBin     string `json:"java_bin" yaml:"java_bin" toml:"java_bin"`
	HeapMB      int    `json:"heap_mb" yaml:"heap_mb" toml:"heap_mb"`
	PortMin     int    `json:"port_min" yaml:"port_min" toml:"port_min"`
	PortMax     int    `json:"port_max" yaml:"port_max" toml:"port_max"`
	StopCommand string `json:"stop_command" yaml:"stop_command" toml:"stop_command"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
