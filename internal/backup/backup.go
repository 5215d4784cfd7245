package backup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/projgen/internal/paths"
	"github.com/thoreinstein/projgen/pkg/fileutil"
)

// Version is recorded in every manifest. The CLI sets it from the build version.
var Version = "dev"

// idLayout formats backup IDs. IDs sort in creation order.
const idLayout = "20060102T150405.000000"

// Manager creates, lists, restores and prunes config backups.
type Manager struct {
	fs             afero.Fs
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFs sets the filesystem both originals and backups live on.
func WithFs(fsys afero.Fs) Option {
	return func(m *Manager) {
		if fsys != nil {
			m.fs = fsys
		}
	}
}

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetentionCount sets how many backups Backup keeps per config.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a Manager backed by the OS filesystem and
// paths.BackupDir unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fs:             afero.NewOsFs(),
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NameFor returns the backup name for a config file: its base name without
// the extension, with path separators replaced.
func NameFor(configPath string) string {
	base := filepath.Base(configPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(base)
}

// Backup copies the existing files among files into a new backup for name
// and prunes backups beyond the retention count. Missing files are skipped;
// if none exist, ErrNoBackupsFound is returned and nothing is written.
func (m *Manager) Backup(name, reason string, files []string) (*Manifest, error) {
	if name == "" {
		return nil, errors.New("backup name is required")
	}

	var existing []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", f)
		}
		info, err := m.fs.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", f)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", f)
		}
		existing = append(existing, abs)
	}
	if len(existing) == 0 {
		return nil, errors.Wrap(ErrNoBackupsFound, "nothing to back up")
	}

	id, dir, err := m.newBackupDir(name)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   m.now().UTC(),
		Name:        name,
		Reason:      reason,
		ToolVersion: Version,
		ID:          id,
	}

	for i, src := range existing {
		rel := strconv.Itoa(i) + "-" + filepath.Base(src)
		hash, mode, err := m.copyFile(src, filepath.Join(dir, rel))
		if err != nil {
			_ = m.fs.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", src)
		}
		manifest.Files = append(manifest.Files, File{
			OriginalPath: src,
			RelPath:      rel,
			SHA256Hash:   hash,
			Mode:         mode,
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "encoding manifest")
	}
	if err := fileutil.AtomicWriteFile(m.fs, filepath.Join(dir, manifestName), data, 0o600); err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(name, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// newBackupDir creates a fresh directory for a backup of name.
func (m *Manager) newBackupDir(name string) (id, dir string, err error) {
	base := m.now().UTC().Format(idLayout)
	id = base
	for n := 1; ; n++ {
		dir = m.backupPath(name, id)
		exists, err := afero.DirExists(m.fs, dir)
		if err != nil {
			return "", "", errors.Wrap(err, "checking backup directory")
		}
		if !exists {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	if err := m.fs.MkdirAll(dir, 0o700); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}
	return id, dir, nil
}

// Restore copies every file of a backup back to its original location,
// verifying each against its recorded hash first. Nothing is written if any
// file fails verification.
func (m *Manager) Restore(name, id string) (*Manifest, error) {
	manifest, err := m.Get(name, id)
	if err != nil {
		return nil, err
	}
	dir := m.backupPath(name, manifest.ID)

	contents := make([][]byte, len(manifest.Files))
	for i, f := range manifest.Files {
		data, err := afero.ReadFile(m.fs, filepath.Join(dir, f.RelPath))
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup of %s", f.OriginalPath)
		}
		if hashOf(data) != f.SHA256Hash {
			return nil, errors.Wrapf(ErrBackupCorrupted, "%s: hash mismatch", f.RelPath)
		}
		contents[i] = data
	}

	for i, f := range manifest.Files {
		if err := m.fs.MkdirAll(filepath.Dir(f.OriginalPath), 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", f.OriginalPath)
		}
		if err := fileutil.AtomicWriteFile(m.fs, f.OriginalPath, contents[i], f.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}
	return manifest, nil
}

// List returns the backups of name, newest first.
func (m *Manager) List(name string) ([]Manifest, error) {
	if name == "" {
		return nil, errors.New("backup name is required")
	}

	entries, err := afero.ReadDir(m.fs, filepath.Join(m.rootDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(name, entry.Name())
		if err != nil {
			// Skip invalid backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune removes all but the newest keep backups of name.
func (m *Manager) Prune(name string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(name)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := m.fs.RemoveAll(m.backupPath(name, old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// Get returns the manifest of one backup. An empty id selects the newest.
func (m *Manager) Get(name, id string) (*Manifest, error) {
	if name == "" {
		return nil, errors.New("backup name is required")
	}
	if id == "" {
		manifests, err := m.List(name)
		if err != nil {
			return nil, err
		}
		return &manifests[0], nil
	}

	data, err := afero.ReadFile(m.fs, filepath.Join(m.backupPath(name, id), manifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func (m *Manager) backupPath(name, id string) string {
	return filepath.Join(m.rootDir, name, id)
}

// copyFile copies src to dst, returning the SHA256 of the contents and the
// source mode.
func (m *Manager) copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	info, err := m.fs.Stat(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	data, err := fileutil.ReadFileWithLimit(m.fs, src)
	if err != nil {
		return "", 0, err
	}
	if err := afero.WriteReader(m.fs, dst, bytes.NewReader(data)); err != nil {
		return "", 0, errors.Wrap(err, "writing backup copy")
	}
	if err := m.fs.Chmod(dst, 0o600); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}
	return hashOf(data), info.Mode(), nil
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
