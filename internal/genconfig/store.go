package genconfig

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/internal/options"
	"github.com/thoreinstein/projgen/pkg/fileutil"
)

// Store loads and writes config files. A Store holds no per-file state and
// may be shared between goroutines; loads of distinct paths are independent.
type Store struct {
	fs       afero.Fs
	identity IdentityProvider
	logger   *slog.Logger
	schema   *options.Schema
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFs sets the filesystem used for reads and writes.
func WithFs(fsys afero.Fs) StoreOption {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithIdentity sets the provider that names the per-user overlay.
func WithIdentity(id IdentityProvider) StoreOption {
	return func(s *Store) {
		if id != nil {
			s.identity = id
		}
	}
}

// WithLogger sets the logger that receives load diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchema sets the option schema.
func WithSchema(schema *options.Schema) StoreOption {
	return func(s *Store) {
		if schema != nil {
			s.schema = schema
		}
	}
}

// NewStore returns a Store backed by the OS filesystem and user identity
// unless overridden.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		fs:       afero.NewOsFs(),
		identity: OSIdentity(),
		logger:   logging.NewDiscard(),
		schema:   options.DefaultSchema(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PerUserPath returns the overlay path for the config at configPath:
// "<dir of configPath>/<user>.projgen-user".
func (s *Store) PerUserPath(configPath string) (string, error) {
	user, err := s.identity.CurrentUser()
	if err != nil {
		return "", errors.Wrap(err, "resolving current user")
	}
	return filepath.Join(filepath.Dir(configPath), PerUserFilename(user)), nil
}

// Load reads the config at path plus its per-user overlay, if one exists.
// toolPathOverride, when non-empty, wins over the BazelPath option.
func (s *Store) Load(path, toolPathOverride string) (*Config, error) {
	primary, err := fileutil.ReadFileWithLimit(s.fs, path)
	if err != nil {
		return nil, newError(ErrBadInputFilePath, path, err, "")
	}

	perUserPath, err := s.PerUserPath(path)
	if err != nil {
		return nil, newError(ErrAdditionalOptionsData, "", err, "")
	}

	perUser, err := fileutil.ReadFileWithLimit(s.fs, perUserPath)
	switch {
	case err == nil:
		if perUser == nil {
			perUser = []byte{}
		}
	case errors.Is(err, fs.ErrNotExist):
		perUser = nil
	default:
		return nil, newError(ErrAdditionalOptionsData, perUserPath, err, "")
	}

	cfg, err := s.decode(path, perUserPath, primary, perUser, toolPathOverride)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded config",
		"path", path,
		"project", cfg.ProjectName(),
		"targets", len(cfg.buildTargetLabels),
		"filters", len(cfg.pathFilters),
		"per_user", perUser != nil,
		"tool_path", cfg.ToolPath().String(),
	)
	return cfg, nil
}

// WriteResult reports which files Write produced.
type WriteResult struct {
	// ConfigPath is the shared config file that was written.
	ConfigPath string
	// PerUserPath is the overlay that was written, or "" when the config had
	// no per-user values and no overlay was created.
	PerUserPath string
}

// Write saves cfg into dir as ConfigFilename, plus the per-user overlay when
// there is something to put in it. Files are replaced atomically.
func (s *Store) Write(dir string, cfg *Config) (WriteResult, error) {
	var res WriteResult

	data, err := cfg.Save()
	if err != nil {
		return res, err
	}
	userData, hasUserData, err := cfg.SavePerUserSettings()
	if err != nil {
		return res, err
	}

	configPath := filepath.Join(dir, cfg.ConfigFilename())
	if err := fileutil.AtomicWriteFile(s.fs, configPath, data, 0o644); err != nil {
		return res, errors.Wrapf(err, "writing %s", configPath)
	}
	res.ConfigPath = configPath

	if !hasUserData {
		s.logger.Debug("no per-user options to write", "config", configPath)
		return res, nil
	}

	perUserPath, err := s.PerUserPath(configPath)
	if err != nil {
		return res, err
	}
	if err := fileutil.AtomicWriteFile(s.fs, perUserPath, userData, 0o600); err != nil {
		return res, errors.Wrapf(err, "writing %s", perUserPath)
	}
	res.PerUserPath = perUserPath

	return res, nil
}
