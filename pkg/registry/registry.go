// Package registry is the name-keyed model cache. It reads model files
// from a Source, picks a Loader by magic, finalizes the result and
// publishes it only once the whole load succeeded. Models are reference
// marked per level and purged when unused.
package registry

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-models/internal/config"
	"github.com/Faultbox/midgard-models/internal/logger"
	"github.com/Faultbox/midgard-models/pkg/model"
	"github.com/Faultbox/midgard-models/pkg/model/brush"
)

var (
	// ErrNotFound is returned when the source has no file for a name.
	ErrNotFound = errors.New("model not found")
	// ErrUnknownFormat is returned when no loader claims the file's magic.
	ErrUnknownFormat = errors.New("unknown model format")
	// ErrTooManyModels is returned when the registry is full.
	ErrTooManyModels = errors.New("too many models")
	// ErrEmptyName is returned for an empty model name.
	ErrEmptyName = errors.New("empty model name")
)

// Source provides model file bytes by name. *assets.Manager and any
// fs.FS (os.DirFS, embed.FS, fstest.MapFS) serve.
type Source = fs.FS

// Options configures a Registry.
type Options struct {
	Source     Source
	Geometry   config.GeometryConfig
	ShadowMesh config.ShadowMeshConfig
	// MaxModels caps the number of names; 0 is unlimited.
	MaxModels int
	// Workers is the Precache pool size.
	Workers int
	Logger  *zap.Logger
}

// OptionsFromConfig builds Options from the runtime configuration.
func OptionsFromConfig(cfg *config.Config, src Source) Options {
	return Options{
		Source:     src,
		Geometry:   cfg.Geometry,
		ShadowMesh: cfg.ShadowMesh,
		MaxModels:  cfg.Registry.MaxModels,
		Workers:    cfg.Registry.PrecacheWorkers,
		Logger:     logger.Named("registry"),
	}
}

// entry is one registered name. mu serializes loads of that name; the
// record's state fields are guarded by Registry.mu.
type entry struct {
	mu    sync.Mutex
	model *model.Model
}

// Registry owns every model record.
type Registry struct {
	opts    Options
	log     *zap.Logger
	loaders []registeredLoader

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Registry{
		opts:    opts,
		log:     logger.OrNop(opts.Logger),
		entries: make(map[string]*entry),
	}
}

// FindName returns the record for name, creating an unloaded one on
// first reference.
func (r *Registry) FindName(name string) (*model.Model, error) {
	e, err := r.entry(name)
	if err != nil {
		return nil, err
	}
	return e.model, nil
}

func (r *Registry) entry(name string) (*entry, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		return e, nil
	}
	if r.opts.MaxModels > 0 && len(r.entries) >= r.opts.MaxModels {
		return nil, fmt.Errorf("%w: limit %d reached loading %s", ErrTooManyModels, r.opts.MaxModels, name)
	}
	e = &entry{model: &model.Model{Name: name}}
	r.entries[name] = e
	return e, nil
}

// ForName returns the loaded model for name, loading it if needed.
// checkDisk re-reads the file and reloads when its CRC changed; a model
// marked stale reloads regardless. isWorld loads the model as the world
// and registers its submodels as "*1", "*2", ...
//
// A failed load leaves a previously loaded model untouched. crash
// reports the failure at error level; either way the error is returned.
func (r *Registry) ForName(name string, crash, checkDisk, isWorld bool) (*model.Model, error) {
	if strings.HasPrefix(name, "*") {
		return r.submodel(name, crash)
	}
	e, err := r.entry(name)
	if err != nil {
		return nil, r.fail(name, crash, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.model
	r.mu.Lock()
	loaded, stale, crc := m.Loaded, m.Stale, m.CRC
	if loaded && !stale && !checkDisk {
		m.Used = true
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	data, err := fs.ReadFile(r.opts.Source, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, r.fail(name, crash, err)
	}

	sum := crc32.ChecksumIEEE(data)
	if loaded && !stale && sum == crc {
		r.mu.Lock()
		m.Used = true
		r.mu.Unlock()
		r.log.Debug("Model unchanged on disk", zap.String("model", name))
		return m, nil
	}

	built, err := r.build(name, data, isWorld)
	if err != nil {
		return nil, r.fail(name, crash, err)
	}
	built.CRC = sum
	r.publish(e, built)

	r.log.Info("Loaded model",
		zap.String("model", name),
		zap.Stringer("format", built.Type),
		zap.Bool("world", isWorld),
		zap.Bool("reload", loaded),
		zap.Stringer("generation", built.Generation))
	return m, nil
}

// submodel returns a registered "*N" submodel of the current world.
func (r *Registry) submodel(name string, crash bool) (*model.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || !e.model.Loaded {
		return nil, r.fail(name, crash, fmt.Errorf("%w: no world model provides %s", ErrNotFound, name))
	}
	e.model.Used = true
	return e.model, nil
}

func (r *Registry) fail(name string, crash bool, err error) error {
	err = fmt.Errorf("loading model %s: %w", name, err)
	if crash {
		r.log.Error("Model load failed", zap.String("model", name), zap.Error(err))
	} else {
		r.log.Debug("Model load failed", zap.String("model", name), zap.Error(err))
	}
	return err
}

// build runs a load session to completion. Nothing it creates is visible
// until publish.
func (r *Registry) build(name string, data []byte, isWorld bool) (*model.Model, error) {
	load, err := r.loaderFor(data)
	if err != nil {
		return nil, err
	}
	ls := r.newSession(name, isWorld)
	if err := load(ls, data); err != nil {
		return nil, err
	}
	if err := ls.finalize(); err != nil {
		return nil, err
	}
	return ls.Model, nil
}

// publish swaps the built model into the entry's record in place, so
// pointers handed out by FindName see the loaded model.
func (r *Registry) publish(e *entry, built *model.Model) {
	gen := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	m := e.model
	name := m.Name
	*m = *built
	m.Name = name
	m.Generation = gen
	m.Loaded = true
	m.Used = true
	m.Stale = false
	if r.entries[name] != e {
		// Unloaded while the load ran; the fresh load brings it back.
		r.entries[name] = e
	}

	if !m.IsWorldModel {
		return
	}
	var subs []*model.Model
	if w, ok := m.Data.(*brush.World); ok {
		subs = w.Submodels
	}
	for i, sub := range subs {
		sub.Name = submodelName(i + 1)
		sub.Generation = gen
		sub.CRC = m.CRC
		sub.Loaded = true
		sub.Used = true
		r.entries[sub.Name] = &entry{model: sub}
	}
	// Drop submodels left over from a larger previous world.
	for n := len(subs) + 1; ; n++ {
		if _, ok := r.entries[submodelName(n)]; !ok {
			break
		}
		delete(r.entries, submodelName(n))
	}
}

func submodelName(n int) string {
	return "*" + strconv.Itoa(n)
}

// Unload releases a model's data and forgets its name. A world takes its
// submodels with it; "*N" submodels cannot be unloaded on their own and
// report false.
func (r *Registry) Unload(name string) bool {
	if strings.HasPrefix(name, "*") {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unloadLocked(name)
}

func (r *Registry) unloadLocked(name string) bool {
	e, ok := r.entries[name]
	if !ok {
		return false
	}
	m := e.model
	if m.IsWorldModel && m.Loaded {
		if w, ok := m.Data.(*brush.World); ok {
			for i, sub := range w.Submodels {
				// A newer world may own the name by now.
				if se, ok := r.entries[submodelName(i+1)]; ok && se.model == sub {
					delete(r.entries, submodelName(i+1))
				}
			}
			if w.ShadowMesh != nil {
				w.ShadowMesh.Free()
			}
		}
	}
	delete(r.entries, name)
	*m = model.Model{Name: name}
	r.log.Debug("Unloaded model", zap.String("model", name))
	return true
}

// ClearUsed unmarks every model; loads after it mark what the next level
// references.
func (r *Registry) ClearUsed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.model.Used = false
	}
}

// PurgeUnused unloads every model not marked used since ClearUsed and
// returns how many it unloaded.
func (r *Registry) PurgeUnused() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		e, ok := r.entries[name]
		if !ok || e.model.Used || strings.HasPrefix(name, "*") {
			continue
		}
		if r.unloadLocked(name) {
			n++
		}
	}
	if n > 0 {
		r.log.Info("Purged unused models", zap.Int("count", n))
	}
	return n
}

// RemoveStaleWorldModels unloads every world model except skip. It runs
// while a new world loads, so the old one's submodels do not linger.
func (r *Registry) RemoveStaleWorldModels(skip *model.Model) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		e, ok := r.entries[name]
		if !ok || e.model == skip || !e.model.IsWorldModel || !e.model.Loaded {
			continue
		}
		if r.unloadLocked(name) {
			n++
		}
	}
	return n
}

// MarkStale flags a loaded model for reload on its next ForName.
func (r *Registry) MarkStale(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || !e.model.Loaded {
		return false
	}
	e.model.Stale = true
	return true
}

// Stale reports whether name is loaded but out of date.
func (r *Registry) Stale(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return ok && e.model.Stale
}

// Names lists every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
