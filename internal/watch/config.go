package watch

import (
	"context"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
)

// ReloadFunc receives the result of each config load. Exactly one of cfg and
// err is non-nil.
type ReloadFunc func(cfg *genconfig.Config, err error)

// Config loads the project config at path, passes the result to fn, and
// loads it again every time the config or its per-user overlay changes.
// It blocks until ctx is done.
func Config(ctx context.Context, store *genconfig.Store, path, toolPathOverride string, fn ReloadFunc, opts ...Option) error {
	overlay, err := store.PerUserPath(path)
	if err != nil {
		return errors.Wrap(err, "locating per-user overlay")
	}

	w, err := New([]string{path, overlay}, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	fn(store.Load(path, toolPathOverride))

	return w.Run(ctx, func([]Event) {
		fn(store.Load(path, toolPathOverride))
	})
}
