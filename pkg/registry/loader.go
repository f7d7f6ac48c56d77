package registry

import (
	"bytes"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Loader parses a model file into ls.Model. It fills the format tag,
// the format record, the mesh and the surfaces; the session finalizes
// the rest once the loader returns.
type Loader func(ls *LoadSession, data []byte) error

type registeredLoader struct {
	format string
	magic  []byte
	load   Loader
}

// RegisterLoader routes files starting with magic to load. Longer magics
// are tried first, so a format may claim a more specific prefix of
// another. Registration is not safe concurrently with loads.
func (r *Registry) RegisterLoader(format string, magic []byte, load Loader) {
	r.loaders = append(r.loaders, registeredLoader{
		format: format,
		magic:  bytes.Clone(magic),
		load:   load,
	})
	slices.SortStableFunc(r.loaders, func(a, b registeredLoader) int {
		return len(b.magic) - len(a.magic)
	})
	r.log.Debug("Registered model loader", zap.String("format", format), zap.Binary("magic", magic))
}

func (r *Registry) loaderFor(data []byte) (Loader, error) {
	for _, l := range r.loaders {
		if bytes.HasPrefix(data, l.magic) {
			return l.load, nil
		}
	}
	n := min(len(data), 4)
	return nil, fmt.Errorf("%w: magic %q", ErrUnknownFormat, data[:n])
}
