package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Resolver maps files on disk to model names. *assets.Manager is one.
type Resolver interface {
	Paths() []string
	NameFor(path string) (string, bool)
	Invalidate(name string)
}

// Watcher marks models stale when their source files change, so the
// next ForName reloads them.
type Watcher struct {
	reg *Registry
	res Resolver
	fsw *fsnotify.Watcher
	log *zap.Logger

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching every search path of res and the
// directories below it.
func NewWatcher(reg *Registry, res Resolver) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		reg:     reg,
		res:     res,
		fsw:     fsw,
		log:     reg.log.Named("watcher"),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, p := range res.Paths() {
		if err := w.watchRecursive(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(e)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("File watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if e.Has(fsnotify.Create) {
		if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				w.log.Warn("Cannot watch new directory", zap.String("path", e.Name), zap.Error(err))
			}
			return
		}
	}
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
		return
	}
	name, ok := w.res.NameFor(e.Name)
	if !ok {
		return
	}
	w.res.Invalidate(name)
	if owner, ok := skinOwner(name); ok {
		name = owner
	}
	if w.reg.MarkStale(name) {
		w.log.Info("Model source changed", zap.String("model", name), zap.Stringer("op", e.Op))
	}
}

var skinFile = regexp.MustCompile(`^(.+)_\d+\.skin$`)

// skinOwner returns the model a NAME_N.skin file belongs to.
func skinOwner(name string) (string, bool) {
	m := skinFile.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// watchRecursive adds dir and every directory below it.
func (w *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		<-w.stopped
	})
	return err
}
