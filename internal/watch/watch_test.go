package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/logging"
)

// collector gathers batches delivered by Run.
type collector struct {
	mu      sync.Mutex
	batches [][]Event
	notify  chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 16)}
}

func (c *collector) handle(batch []Event) {
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
	c.notify <- struct{}{}
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events")
	}
}

func (c *collector) snapshot() [][]Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]Event(nil), c.batches...)
}

func startRun(t *testing.T, w *Watcher, handler Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, handler) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Run did not return after cancel")
		}
		_ = w.Close()
	})
}

func TestNew_RequiresFiles(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "App.projgen")})
	assert.Error(t, err)
}

func TestNew_Options(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "b"), filepath.Join(dir, "a")}, WithDebounce(0), WithLogger(logging.ForTest(t)))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, time.Duration(0), w.debounce)
	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}, w.Files())
}

func TestRun_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "App.projgen")

	w, err := New([]string{target}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)

	c := newCollector()
	startRun(t, w, c.handle)

	for i := range 5 {
		require.NoError(t, os.WriteFile(target, []byte{byte('0' + i)}, 0o644))
	}
	c.wait(t)

	// Nothing else should arrive once the burst has been delivered.
	time.Sleep(300 * time.Millisecond)

	batches := c.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	ev := batches[0][0]
	assert.Equal(t, target, ev.Path)
	assert.True(t, ev.Op.Has(fsnotify.Create))
	assert.True(t, ev.Op.Has(fsnotify.Write))
	assert.False(t, ev.Removed())
}

func TestRun_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "App.projgen")

	w, err := New([]string{target}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	c := newCollector()
	startRun(t, w, c.handle)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, c.snapshot())

	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))
	c.wait(t)

	batches := c.snapshot()
	require.Len(t, batches, 1)
	assert.Equal(t, target, batches[0][0].Path)
}

func TestRun_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "App.projgen")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	w, err := New([]string{target}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	c := newCollector()
	startRun(t, w, c.handle)

	require.NoError(t, os.Remove(target))
	c.wait(t)

	batches := c.snapshot()
	require.Len(t, batches, 1)
	assert.True(t, batches[0][0].Removed())
}

func TestRun_ReturnsWhenClosed(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "App.projgen")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), func([]Event) {}) }()

	require.NoError(t, w.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

type reload struct {
	cfg *genconfig.Config
	err error
}

func TestConfig_ReloadsOnOverlayChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.projgen")
	overlay := filepath.Join(dir, "alice.projgen-user")
	require.NoError(t, os.WriteFile(path, []byte(`{"projectName": "App"}`), 0o644))

	store := genconfig.NewStore(
		genconfig.WithIdentity(genconfig.StaticIdentity("alice")),
		genconfig.WithLogger(logging.ForTest(t)),
	)

	results := make(chan reload, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Config(ctx, store, path, "", func(cfg *genconfig.Config, err error) {
			results <- reload{cfg, err}
		}, WithDebounce(50*time.Millisecond))
	}()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	next := func() reload {
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reload")
			return reload{}
		}
	}

	first := next()
	require.NoError(t, first.err)
	assert.False(t, first.cfg.ToolPath().Resolved())

	require.NoError(t, os.WriteFile(overlay, []byte(`{"optionSet": {"BazelPath": {"p": "/opt/bazel"}}}`), 0o600))
	second := next()
	require.NoError(t, second.err)
	assert.Equal(t, "/opt/bazel", second.cfg.ToolPath().Path())

	require.NoError(t, os.WriteFile(path, []byte(`{"projectName": `), 0o644))
	third := next()
	require.Error(t, third.err)
	assert.True(t, errors.Is(third.err, genconfig.ErrDeserialization))
}
