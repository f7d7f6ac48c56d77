package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// An empty path searches the standard locations; flags may be nil.
func Load(path string, flags *Flags) (*Config, error) {
	cfg := Default()

	configPath := path
	if configPath == "" && flags != nil {
		configPath = flags.ConfigPath()
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if flags != nil {
		flags.apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot honor.
func (c *Config) Validate() error {
	if c.ShadowMesh.InitialVertices < 3 || c.ShadowMesh.InitialTriangles < 1 {
		return fmt.Errorf("shadow_mesh: initial capacity must hold at least one triangle, got %d vertices, %d triangles",
			c.ShadowMesh.InitialVertices, c.ShadowMesh.InitialTriangles)
	}
	if c.Geometry.SnapGrid < 0 {
		return fmt.Errorf("geometry: snap_grid must not be negative, got %g", c.Geometry.SnapGrid)
	}
	if c.Registry.PrecacheWorkers < 1 {
		return fmt.Errorf("registry: precache_workers must be positive, got %d", c.Registry.PrecacheWorkers)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./models.yaml",
		"./models.toml",
		filepath.Join(ConfigDir(), "models.yaml"),
		filepath.Join(ConfigDir(), "models.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardModels")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardModels")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-models")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-models")
	}
}

// loadFromFile loads config from a YAML or TOML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
