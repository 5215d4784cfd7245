package commands

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
)

const legacyConfig = `{
  "projectName": "App",
  "buildTargets": ["//b:B", "//a:A"],
  "sourceTargets": ["//app/src:lib", "//app/src:other", ":local"],
  "optionSet": {
    "IncludeBuildSources": {"p": true},
    "BazelPath": {"p": "/shared/bazel"}
  }
}`

func writeMem(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestConfigShow_JSON(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", legacyConfig)

	out, _, err := execute(t, "config", "show", "/ws/App.projgen")
	require.NoError(t, err)

	assert.Contains(t, out, `"sourceFilters": [
    "app/src"
  ]`)
	assert.NotContains(t, out, "sourceTargets")
	assert.Contains(t, out, `"IncludeBuildSources": {
      "p": "YES"
    }`)
	assert.NotContains(t, out, "BazelPath", "per-user options are not part of the shared document")
	assert.Less(t, strings.Index(out, "//a:A"), strings.Index(out, "//b:B"))
}

func TestConfigShow_PerUser(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", legacyConfig)
	writeMem(t, fsys, "/ws/alice.projgen-user", `{"optionSet": {"BazelPath": {"p": "/home/alice/bazel"}}}`)

	out, _, err := execute(t, "config", "show", "--per-user", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, out, "/home/alice/bazel")
	assert.NotContains(t, out, "IncludeBuildSources")
}

func TestConfigShow_NoPerUser(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", `{"projectName": "App"}`)

	out, _, err := execute(t, "config", "show", "--per-user", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Equal(t, "no per-user settings\n", out)
}

func TestConfigShow_Formats(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", legacyConfig)

	yamlOut, _, err := execute(t, "config", "show", "-f", "yaml", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, yamlOut, "projectName: App")

	tomlOut, _, err := execute(t, "config", "show", "-f", "toml", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, tomlOut, "projectName = 'App'")

	_, _, err = execute(t, "config", "show", "-f", "xml", "/ws/App.projgen")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestConfigShow_Summary(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", legacyConfig)
	writeMem(t, fsys, "/ws/alice.projgen-user", `{"optionSet": {"BazelPath": {"p": "/home/alice/bazel"}}}`)

	out, _, err := execute(t, "config", "show", "--summary", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, out, "App\n")
	assert.Contains(t, out, "targets:  2")
	assert.Contains(t, out, "filters:  app/src")
	assert.Contains(t, out, "bazel:    /home/alice/bazel (option)")

	out, _, err = execute(t, "--bazel", "/flag/bazel", "config", "show", "--summary", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, out, "bazel:    /flag/bazel (override)")
}

func TestConfigShow_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantKind error
	}{
		{"missing config", nil, genconfig.ErrBadInputFilePath},
		{"malformed config", map[string]string{"/ws/App.projgen": `{`}, genconfig.ErrDeserialization},
		{"malformed overlay", map[string]string{
			"/ws/App.projgen":        `{}`,
			"/ws/alice.projgen-user": `[`,
		}, genconfig.ErrAdditionalOptionsData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateSettings(t)
			fsys := useMemFs(t)
			for path, content := range tt.files {
				writeMem(t, fsys, path, content)
			}

			_, _, err := execute(t, "config", "show", "/ws/App.projgen")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

			var exitErr *errors.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.NotEmpty(t, exitErr.Suggestion)
		})
	}
}

func TestConfigFmt_KeepsOverlayOnlyKeysOutOfSharedFile(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", cleanConfig)
	writeMem(t, fsys, "/ws/alice.projgen-user", `{"optionSet": {"MyPrivateToken": {"p": "secret"}}}`)

	_, _, err := execute(t, "config", "fmt", "--no-backup", "/ws/App.projgen")
	require.NoError(t, err)

	shared, err := afero.ReadFile(fsys, "/ws/App.projgen")
	require.NoError(t, err)
	assert.NotContains(t, string(shared), "MyPrivateToken")

	overlay, err := afero.ReadFile(fsys, "/ws/alice.projgen-user")
	require.NoError(t, err)
	assert.Contains(t, string(overlay), `"MyPrivateToken"`)

	out, _, err := execute(t, "config", "fmt", "--check", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Equal(t, "/ws/App.projgen: ok\n", out)
}

func TestConfigFmt_MigratesLegacyConfig(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)
	writeMem(t, fsys, "/ws/App.projgen", legacyConfig)

	_, _, err := execute(t, "config", "fmt", "--check", "/ws/App.projgen")
	require.Error(t, err, "legacy file is not canonical")

	out, _, err := execute(t, "config", "fmt", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, out, "formatted /ws/App.projgen")
	assert.Contains(t, out, "formatted /ws/alice.projgen-user")

	shared, err := afero.ReadFile(fsys, "/ws/App.projgen")
	require.NoError(t, err)
	assert.Contains(t, string(shared), `"sourceFilters"`)
	assert.NotContains(t, string(shared), `"sourceTargets"`)
	assert.NotContains(t, string(shared), "BazelPath")

	overlay, err := afero.ReadFile(fsys, "/ws/alice.projgen-user")
	require.NoError(t, err)
	assert.Contains(t, string(overlay), "/shared/bazel")

	out, _, err = execute(t, "config", "fmt", "--check", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Equal(t, "/ws/App.projgen: ok\n", out)

	// A second run changes nothing.
	out, _, err = execute(t, "config", "fmt", "/ws/App.projgen")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConfigInit(t *testing.T) {
	isolateSettings(t)
	fsys := useMemFs(t)

	out, _, err := execute(t, "config", "init", "/ws",
		"--name", "My/App",
		"-t", "//app:App",
		"--filter", "app",
		"--file", "README.md",
		"-o", "IncludeBuildSources=true",
		"-o", "BazelPath=/usr/local/bin/bazel",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "created /ws/My_App.projgen")
	assert.Contains(t, out, "created /ws/alice.projgen-user")

	shared, err := afero.ReadFile(fsys, "/ws/My_App.projgen")
	require.NoError(t, err)
	assert.Contains(t, string(shared), `"projectName": "My/App"`)
	assert.Contains(t, string(shared), `"p": "YES"`)
	assert.Contains(t, string(shared), `"README.md"`)

	_, _, err = execute(t, "config", "init", "/ws", "--name", "My/App")
	require.Error(t, err, "existing config is not overwritten")

	_, _, err = execute(t, "config", "init", "/ws", "--name", "My/App", "--force")
	require.NoError(t, err)
}

func TestConfigInit_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		option string
	}{
		{"missing equals", "IncludeBuildSources"},
		{"unknown key", "NoSuchOption=1"},
		{"bad bool", "GenerateRunfiles=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateSettings(t)
			useMemFs(t)

			_, _, err := execute(t, "config", "init", "/ws", "--name", "App", "-o", tt.option)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestParseOptionFlags(t *testing.T) {
	set, err := parseOptionFlags([]string{"CommandlineArguments=-a=b", "GenerateRunfiles=no"})
	require.NoError(t, err)

	v, ok := set.CommonValue("CommandlineArguments")
	assert.True(t, ok)
	assert.Equal(t, "-a=b", v, "only the first = separates key and value")

	v, _ = set.CommonValue("GenerateRunfiles")
	assert.Equal(t, "NO", v)
}
