// Package watch reports changes to a fixed set of files.
//
// Parent directories are watched rather than the files themselves, so a
// file that is replaced by rename (as fileutil.AtomicWriteFile does) or that
// does not exist yet is still tracked. Bursts of events are coalesced: the
// handler runs once the watched files have been quiet for the debounce
// interval.
package watch

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/logging"
)

// DefaultDebounce is the quiet period used when no WithDebounce option is given.
const DefaultDebounce = 100 * time.Millisecond

// Event is a coalesced change to one watched file.
type Event struct {
	// Path is the absolute path of the changed file.
	Path string

	// Op holds every operation seen for Path during the quiet period.
	Op fsnotify.Op

	// Time is when the last of those operations was seen.
	Time time.Time
}

// Removed reports whether the file is gone after the change.
func (e Event) Removed() bool {
	return e.Op.Has(fsnotify.Remove) || e.Op.Has(fsnotify.Rename)
}

// Handler receives one batch of events, sorted by path.
type Handler func(events []Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers every event as it arrives.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher watches a fixed set of files.
type Watcher struct {
	debounce time.Duration
	logger   *slog.Logger
	files    map[string]struct{}
	fsw      *fsnotify.Watcher
}

// New starts watching files. Each file's parent directory must exist.
func New(files []string, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "no files to watch")
	}

	w := &Watcher{
		debounce: DefaultDebounce,
		logger:   logging.NewDiscard(),
		files:    make(map[string]struct{}, len(files)),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", f)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, "watching %s", dir)
		}
	}
	w.fsw = fsw

	return w, nil
}

// Files returns the watched files as absolute paths, sorted.
func (w *Watcher) Files() []string {
	return slices.Sorted(maps.Keys(w.files))
}

// Close releases the underlying watcher. Run returns once it is closed.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches to handler until ctx is done or the watcher is
// closed. The handler runs on Run's goroutine; events arriving while it runs
// are buffered by fsnotify.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	pending := make(map[string]Event)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]Event, 0, len(pending))
		for _, path := range slices.Sorted(maps.Keys(pending)) {
			batch = append(batch, pending[path])
		}
		clear(pending)
		handler(batch)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(ev.Name)
			if _, watched := w.files[path]; !watched || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("file event", "path", path, "op", ev.Op.String())

			prev := pending[path]
			pending[path] = Event{Path: path, Op: prev.Op | ev.Op, Time: time.Now()}

			if w.debounce == 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			flush()
		}
	}
}
