package genconfig

import (
	"slices"
	"strings"

	"github.com/thoreinstein/projgen/internal/options"
)

// File naming.
const (
	// FileExtension is the suffix of a shared config file.
	FileExtension = "projgen"
	// PerUserFileExtension is the suffix of a per-user overlay file.
	PerUserFileExtension = "projgen-user"
	// ProjectFileExtension is the suffix of the generated IDE project.
	ProjectFileExtension = "xcodeproj"
	// DefaultProjectName is used when a config does not name its project.
	DefaultProjectName = "Unnamed Project"
)

// Persisted keys of the shared config.
const (
	keyProjectName         = "projectName"
	keyBuildTargets        = "buildTargets"
	keySourceFilters       = "sourceFilters"
	keySourceTargets       = "sourceTargets" // deprecated, read-only
	keyAdditionalFilePaths = "additionalFilePaths"
)

// Fields are the inputs to New.
type Fields struct {
	ProjectName       string
	BuildTargetLabels []string
	PathFilters       []string
	// AdditionalFilePaths is nil when the config lists no extra files.
	// A non-nil empty slice is kept and written as an empty list.
	AdditionalFilePaths []string
	Options             *options.Set
	// ToolPathOverride takes precedence over the BazelPath option.
	ToolPathOverride string
}

// Config is an immutable generator config. Use Fields and New to derive an
// edited copy.
type Config struct {
	projectName         string
	buildTargetLabels   []string
	pathFilters         map[string]struct{}
	additionalFilePaths []string
	options             *options.Set
	toolPathOverride    string
	toolPath            ToolPath
}

// New builds a Config from f. All slices are copied.
func New(f Fields) *Config {
	name := f.ProjectName
	if name == "" {
		name = DefaultProjectName
	}

	set := f.Options
	if set == nil {
		set = options.NewSet(nil)
	}

	filters := make(map[string]struct{}, len(f.PathFilters))
	for _, p := range f.PathFilters {
		filters[p] = struct{}{}
	}

	return &Config{
		projectName:         name,
		buildTargetLabels:   cloneOrEmpty(f.BuildTargetLabels),
		pathFilters:         filters,
		additionalFilePaths: slices.Clone(f.AdditionalFilePaths),
		options:             set,
		toolPathOverride:    f.ToolPathOverride,
		toolPath:            resolveToolPath(f.ToolPathOverride, set),
	}
}

// ProjectName returns the display name of the project.
func (c *Config) ProjectName() string {
	return c.projectName
}

// BuildTargetLabels returns the target labels in input order, duplicates included.
func (c *Config) BuildTargetLabels() []string {
	return slices.Clone(c.buildTargetLabels)
}

// PathFilters returns the package path filters, sorted.
func (c *Config) PathFilters() []string {
	out := make([]string, 0, len(c.pathFilters))
	for p := range c.pathFilters {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// HasPathFilter reports whether p is one of the path filters.
func (c *Config) HasPathFilter(p string) bool {
	_, ok := c.pathFilters[p]
	return ok
}

// AdditionalFilePaths returns the extra file paths and whether the config
// lists any at all (an empty list still reports true).
func (c *Config) AdditionalFilePaths() ([]string, bool) {
	if c.additionalFilePaths == nil {
		return nil, false
	}
	return slices.Clone(c.additionalFilePaths), true
}

// Options returns the merged option collection.
func (c *Config) Options() *options.Set {
	return c.options
}

// ToolPath returns the resolved build tool location.
func (c *Config) ToolPath() ToolPath {
	return c.toolPath
}

// ConfigFilename returns the file name the config is saved under.
func (c *Config) ConfigFilename() string {
	return ConfigFilename(c.projectName)
}

// ProjectFilename returns the file name of the generated project.
func (c *Config) ProjectFilename() string {
	return ProjectFilename(c.projectName)
}

// Fields returns a copy of the inputs c was built from.
func (c *Config) Fields() Fields {
	addl, _ := c.AdditionalFilePaths()
	return Fields{
		ProjectName:         c.projectName,
		BuildTargetLabels:   c.BuildTargetLabels(),
		PathFilters:         c.PathFilters(),
		AdditionalFilePaths: addl,
		Options:             c.options,
		ToolPathOverride:    c.toolPathOverride,
	}
}

// SanitizeName replaces path separators in name with underscores so it can
// be used as a single file name component.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}

// ConfigFilename returns "<sanitized project name>.projgen".
func ConfigFilename(projectName string) string {
	return SanitizeName(projectName) + "." + FileExtension
}

// ProjectFilename returns "<sanitized project name>.xcodeproj".
func ProjectFilename(projectName string) string {
	return SanitizeName(projectName) + "." + ProjectFileExtension
}

// PerUserFilename returns "<sanitized user>.projgen-user".
func PerUserFilename(user string) string {
	return SanitizeName(user) + "." + PerUserFileExtension
}

func cloneOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
