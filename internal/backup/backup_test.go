package backup

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/errors"
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	m := NewManager(append([]Option{WithFs(fsys), WithBackupDir("/backups")}, opts...)...)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m, fsys
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestNameFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/ws/App.projgen", "App"},
		{"App.projgen", "App"},
		{"/ws/noext", "noext"},
		{"/ws/a:b.projgen", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameFor(tt.path), tt.path)
	}
}

func TestBackupAndRestore(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", `{"sourceTargets":["//a:b"]}`)
	writeFile(t, fsys, "/ws/alice.projgen-user", `{"optionSet":{}}`)

	manifest, err := m.Backup("App", "fmt", []string{"/ws/App.projgen", "/ws/alice.projgen-user", "/ws/missing"})
	require.NoError(t, err)
	assert.Equal(t, "App", manifest.Name)
	assert.Equal(t, "fmt", manifest.Reason)
	assert.Equal(t, ManifestVersion, manifest.Version)
	require.Len(t, manifest.Files, 2)
	assert.Equal(t, "/ws/App.projgen", manifest.Files[0].OriginalPath)
	assert.NotEmpty(t, manifest.Files[0].SHA256Hash)

	writeFile(t, fsys, "/ws/App.projgen", `{"sourceFilters":["a"]}`)
	require.NoError(t, fsys.Remove("/ws/alice.projgen-user"))

	restored, err := m.Restore("App", "")
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, restored.ID)

	data, err := afero.ReadFile(fsys, "/ws/App.projgen")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sourceTargets":["//a:b"]}`, string(data))

	data, err = afero.ReadFile(fsys, "/ws/alice.projgen-user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"optionSet":{}}`, string(data))
}

func TestBackup_NothingToBackUp(t *testing.T) {
	m, fsys := newTestManager(t)

	_, err := m.Backup("App", "fmt", []string{"/ws/missing"})
	require.ErrorIs(t, err, ErrNoBackupsFound)

	exists, err := afero.DirExists(fsys, "/backups/App")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackup_RejectsDirectory(t *testing.T) {
	m, fsys := newTestManager(t)
	require.NoError(t, fsys.MkdirAll("/ws/dir", 0o755))

	_, err := m.Backup("App", "", []string{"/ws/dir"})
	require.Error(t, err)
}

func TestBackup_RequiresName(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Backup("", "", []string{"/ws/a"})
	require.Error(t, err)
}

func TestBackup_Collision(t *testing.T) {
	m, fsys := newTestManager(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	writeFile(t, fsys, "/ws/App.projgen", "{}")

	first, err := m.Backup("App", "", []string{"/ws/App.projgen"})
	require.NoError(t, err)
	second, err := m.Backup("App", "", []string{"/ws/App.projgen"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.ID+"-1", second.ID)
}

func TestList_NewestFirst(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", "{}")

	var ids []string
	for range 3 {
		manifest, err := m.Backup("App", "", []string{"/ws/App.projgen"})
		require.NoError(t, err)
		ids = append(ids, manifest.ID)
	}

	list, err := m.List("App")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestList_Empty(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.List("App")
	require.ErrorIs(t, err, ErrNoBackupsFound)
}

func TestList_SkipsInvalidDirectories(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", "{}")
	_, err := m.Backup("App", "", []string{"/ws/App.projgen"})
	require.NoError(t, err)
	require.NoError(t, fsys.MkdirAll("/backups/App/garbage", 0o700))

	list, err := m.List("App")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBackup_PrunesToRetention(t *testing.T) {
	m, fsys := newTestManager(t, WithRetentionCount(2))
	writeFile(t, fsys, "/ws/App.projgen", "{}")

	var last string
	for range 4 {
		manifest, err := m.Backup("App", "", []string{"/ws/App.projgen"})
		require.NoError(t, err)
		last = manifest.ID
	}

	list, err := m.List("App")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, last, list[0].ID)
}

func TestPrune(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", "{}")
	for range 3 {
		_, err := m.Backup("App", "", []string{"/ws/App.projgen"})
		require.NoError(t, err)
	}

	require.NoError(t, m.Prune("App", 0))
	_, err := m.List("App")
	require.ErrorIs(t, err, ErrNoBackupsFound)

	require.NoError(t, m.Prune("Other", 1))
	require.Error(t, m.Prune("App", -1))
}

func TestRestore_Corrupted(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", "original")
	manifest, err := m.Backup("App", "", []string{"/ws/App.projgen"})
	require.NoError(t, err)

	writeFile(t, fsys, "/backups/App/"+manifest.ID+"/"+manifest.Files[0].RelPath, "tampered")
	writeFile(t, fsys, "/ws/App.projgen", "current")

	_, err = m.Restore("App", manifest.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackupCorrupted))

	data, err := afero.ReadFile(fsys, "/ws/App.projgen")
	require.NoError(t, err)
	assert.Equal(t, "current", string(data))
}

func TestGet_UnknownID(t *testing.T) {
	m, fsys := newTestManager(t)
	writeFile(t, fsys, "/ws/App.projgen", "{}")
	_, err := m.Backup("App", "", []string{"/ws/App.projgen"})
	require.NoError(t, err)

	_, err = m.Get("App", "nope")
	require.ErrorIs(t, err, ErrNoBackupsFound)
}
