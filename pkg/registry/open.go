package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/assets"
	"github.com/Faultbox/midgard-models/internal/config"
	"github.com/Faultbox/midgard-models/internal/logger"
)

// Service is a registry wired to the configured search paths.
type Service struct {
	*Registry
	Assets  *assets.Manager
	Watcher *Watcher // nil unless watch_for_changes is set
}

// Open initializes logging, layers the configured search paths into an
// asset manager and returns a registry reading from it. Loaders still
// have to be registered by the caller.
func Open(cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	am := assets.NewManager()
	for _, dir := range cfg.Registry.SearchPaths {
		if err := am.AddPath(dir); err != nil {
			return nil, err
		}
	}

	s := &Service{
		Registry: New(OptionsFromConfig(cfg, am)),
		Assets:   am,
	}
	if cfg.Registry.WatchForChanges {
		w, err := NewWatcher(s.Registry, am)
		if err != nil {
			return nil, err
		}
		s.Watcher = w
	}

	logger.Sugar.Debugf("Registry config: %+v", cfg.Registry)
	logger.Info("Model registry ready",
		zap.Strings("paths", am.Paths()),
		zap.Bool("watch", s.Watcher != nil))
	return s, nil
}

// Close stops the watcher, drops cached file bytes and flushes the log.
func (s *Service) Close() error {
	var err error
	if s.Watcher != nil {
		err = s.Watcher.Close()
	}
	s.Assets.Close()
	logger.Sync()
	return err
}
