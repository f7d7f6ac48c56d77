package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// Precache loads names concurrently, one model per task on a pool of
// Options.Workers goroutines. Every model is still built by a single
// goroutine. Failures do not stop the other loads; they are joined into
// the returned error. Once ctx is done, tasks not yet started are
// skipped.
func (r *Registry) Precache(ctx context.Context, names []string) error {
	start := time.Now()
	pool := pond.NewPool(r.opts.Workers)

	var mu sync.Mutex
	var errs []error
	for _, name := range names {
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := r.ForName(name, false, false, false); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	pool.StopAndWait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	r.log.Info("Precached models",
		zap.Int("requested", len(names)),
		zap.Int("failed", len(errs)),
		zap.Duration("elapsed", time.Since(start)))
	return errors.Join(errs...)
}
