package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups kept per config.
const DefaultRetentionCount = 5

// manifestName is the manifest file inside each backup directory.
const manifestName = "manifest.json"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the requested config.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a backed up file no longer matches the
	// SHA256 hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one backup. It is stored as manifest.json in the
// backup directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the backup was taken.
	CreatedAt time.Time `json:"created_at"`

	// Name is the config the backup belongs to (see NameFor).
	Name string `json:"name"`

	// Reason says which command took the backup.
	Reason string `json:"reason,omitempty"`

	// Files lists every file in the backup.
	Files []File `json:"files"`

	// ToolVersion is the projgen version that took the backup.
	ToolVersion string `json:"tool_version"`

	// ID is the backup directory name. Populated on load, not stored.
	ID string `json:"-"`
}

// File describes one backed up file.
type File struct {
	// OriginalPath is the absolute path the file was copied from.
	OriginalPath string `json:"original_path"`

	// RelPath is the copy's path inside the backup directory.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA256 of the contents.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the original permission bits.
	Mode fs.FileMode `json:"mode"`
}
