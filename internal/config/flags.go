package config

import "flag"

// Flags holds command-line overrides registered on a FlagSet.
type Flags struct {
	config      *string
	debug       *bool
	logFile     *string
	snapGrid    *float64
	noNeighbors *bool
	expandable  *bool
	workers     *int
}

// RegisterFlags binds the runtime's flags on fs. Pass flag.CommandLine from main().
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:      fs.String("models-config", "", "Path to model runtime config file (.yaml or .toml)"),
		debug:       fs.Bool("models-debug", false, "Enable debug logging for model loading"),
		logFile:     fs.String("models-log", "", "Write model runtime logs to this file"),
		snapGrid:    fs.Float64("snap-grid", -1, "Vertex snap grid size (0 disables)"),
		noNeighbors: fs.Bool("no-neighbors", false, "Skip surface mesh adjacency"),
		expandable:  fs.Bool("shadow-expandable", false, "Allow shadow meshes to grow past their initial capacity"),
		workers:     fs.Int("precache-workers", 0, "Number of concurrent precache loads"),
	}
}

// ConfigPath returns the explicit config path if provided via flag.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.snapGrid >= 0 {
		cfg.Geometry.SnapGrid = float32(*f.snapGrid)
	}
	if *f.noNeighbors {
		cfg.Geometry.BuildNeighbors = false
	}
	if *f.expandable {
		cfg.ShadowMesh.Expandable = true
	}
	if *f.workers > 0 {
		cfg.Registry.PrecacheWorkers = *f.workers
	}
}
