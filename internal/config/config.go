// Package config handles configuration for the model runtime.
package config

// Config holds all model runtime settings.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Geometry   GeometryConfig   `yaml:"geometry" toml:"geometry"`
	ShadowMesh ShadowMeshConfig `yaml:"shadow_mesh" toml:"shadow_mesh"`
	Registry   RegistryConfig   `yaml:"registry" toml:"registry"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// GeometryConfig controls how loaders post-process surface meshes.
type GeometryConfig struct {
	AreaWeightedNormals bool `yaml:"area_weighted_normals" toml:"area_weighted_normals"`
	// SnapGrid quantizes positions before deduplication; 0 disables snapping.
	SnapGrid float32 `yaml:"snap_grid" toml:"snap_grid"`
	// RemoveDegenerate drops zero-area collision triangles.
	RemoveDegenerate bool `yaml:"remove_degenerate" toml:"remove_degenerate"`
	BuildNeighbors   bool `yaml:"build_neighbors" toml:"build_neighbors"`
}

// ShadowMeshConfig holds defaults for shadow mesh assembly.
type ShadowMeshConfig struct {
	InitialVertices  int  `yaml:"initial_vertices" toml:"initial_vertices"`
	InitialTriangles int  `yaml:"initial_triangles" toml:"initial_triangles"`
	Expandable       bool `yaml:"expandable" toml:"expandable"`
	MergeSegments    bool `yaml:"merge_segments" toml:"merge_segments"`
}

// RegistryConfig holds model registry settings.
type RegistryConfig struct {
	SearchPaths     []string `yaml:"search_paths" toml:"search_paths"`
	WatchForChanges bool     `yaml:"watch_for_changes" toml:"watch_for_changes"`
	PrecacheWorkers int      `yaml:"precache_workers" toml:"precache_workers"`
	MaxModels       int      `yaml:"max_models" toml:"max_models"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Geometry: GeometryConfig{
			AreaWeightedNormals: true,
			SnapGrid:            0,
			RemoveDegenerate:    true,
			BuildNeighbors:      true,
		},
		ShadowMesh: ShadowMeshConfig{
			InitialVertices:  32768,
			InitialTriangles: 32768,
			Expandable:       true,
			MergeSegments:    false,
		},
		Registry: RegistryConfig{
			SearchPaths:     []string{"."},
			WatchForChanges: false,
			PrecacheWorkers: 4,
			MaxModels:       4096,
		},
	}
}
