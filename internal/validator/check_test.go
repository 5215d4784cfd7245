package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/options"
)

func withBazel(set *options.Set) *options.Set {
	return set.With(options.BazelPath, options.CommonValue("/usr/bin/bazel"))
}

func TestCheck_CleanConfig(t *testing.T) {
	cfg := genconfig.New(genconfig.Fields{
		ProjectName:         "App",
		BuildTargetLabels:   []string{"//app:App", "@dep//lib:lib"},
		PathFilters:         []string{"app", "lib/src"},
		AdditionalFilePaths: []string{"README.md"},
		Options:             withBazel(options.NewSet(nil)),
	})

	r := Check(cfg)
	assert.Empty(t, r.Issues)
}

func TestCheck_Issues(t *testing.T) {
	tests := []struct {
		name   string
		fields genconfig.Fields
		want   Issue
	}{
		{
			name:   "no targets",
			fields: genconfig.Fields{},
			want:   Issue{Severity: SeverityWarning, Field: FieldBuildTargets, Message: "no build targets; the generated project will be empty"},
		},
		{
			name:   "malformed target",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:b:c"}},
			want:   Issue{Severity: SeverityError, Field: FieldBuildTargets, Message: `invalid label: more than one ":"`, Value: "//a:b:c"},
		},
		{
			name:   "duplicate target",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A", "//a:A"}},
			want:   Issue{Severity: SeverityWarning, Field: FieldBuildTargets, Message: "duplicate target", Value: "//a:A"},
		},
		{
			name:   "relative target",
			fields: genconfig.Fields{BuildTargetLabels: []string{"app:App"}},
			want:   Issue{Severity: SeverityWarning, Field: FieldBuildTargets, Message: "target is not absolute; write it as //app:App", Value: "app:App"},
		},
		{
			name:   "label as filter",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A"}, PathFilters: []string{"//app:lib"}},
			want:   Issue{Severity: SeverityWarning, Field: FieldSourceFilters, Message: "filter looks like a label; filters are package paths", Value: "//app:lib"},
		},
		{
			name:   "absolute filter",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A"}, PathFilters: []string{"/abs/path"}},
			want:   Issue{Severity: SeverityError, Field: FieldSourceFilters, Message: "path must be relative to the workspace root", Value: "/abs/path"},
		},
		{
			name:   "escaping filter",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A"}, PathFilters: []string{"app/../../x"}},
			want:   Issue{Severity: SeverityError, Field: FieldSourceFilters, Message: "path escapes the workspace root", Value: "app/../../x"},
		},
		{
			name:   "duplicate additional file",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A"}, AdditionalFilePaths: []string{"a.md", "a.md"}},
			want:   Issue{Severity: SeverityWarning, Field: FieldAdditionalFilePaths, Message: "duplicate path", Value: "a.md"},
		},
		{
			name:   "unresolved tool path",
			fields: genconfig.Fields{BuildTargetLabels: []string{"//a:A"}},
			want:   Issue{Severity: SeverityInfo, Field: FieldOptionSet, Message: "no bazel path configured; the generator will have to locate bazel itself"},
		},
		{
			name: "override for unbuilt target",
			fields: genconfig.Fields{
				BuildTargetLabels: []string{"//a:A"},
				Options: options.NewSet(nil).With(options.BazelBuildOptionsDebug,
					options.CommonValue("-c dbg").WithTarget("//gone:Gone", "-c opt")),
			},
			want: Issue{Severity: SeverityWarning, Field: FieldOptionSet, Message: "override of BazelBuildOptionsDebug names a target that is not built", Value: "//gone:Gone"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(genconfig.New(tt.fields))
			assert.Contains(t, r.Issues, tt.want)
		})
	}
}

func TestCheck_OverrideMatchesCanonicalTarget(t *testing.T) {
	cfg := genconfig.New(genconfig.Fields{
		BuildTargetLabels: []string{"//app"},
		Options: withBazel(options.NewSet(nil)).With(options.BazelBuildOptionsDebug,
			options.CommonValue("").WithTarget("//app:app", "-c opt")),
	})

	r := Check(cfg)
	assert.Empty(t, r.Issues)
}

func TestCheck_OverrideWrittenWithoutSlashes(t *testing.T) {
	cfg := genconfig.New(genconfig.Fields{
		BuildTargetLabels: []string{"//app:App"},
		Options: withBazel(options.NewSet(nil)).With(options.BazelBuildOptionsDebug,
			options.CommonValue("").WithTarget("app:App", "-c opt").WithTarget("other:Other", "-c dbg")),
	})

	r := Check(cfg)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "other:Other", r.Issues[0].Value)
}

func TestCheck_UnknownOption(t *testing.T) {
	set, err := options.DefaultSchema().Build(options.Values{
		"SomeFutureOption": map[string]any{"p": "x"},
	})
	require.NoError(t, err)

	cfg := genconfig.New(genconfig.Fields{
		BuildTargetLabels: []string{"//a:A"},
		Options:           withBazel(set),
	})

	r := Check(cfg)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, Issue{Severity: SeverityInfo, Field: FieldOptionSet, Message: "unknown option is kept as-is", Value: "SomeFutureOption"}, r.Issues[0])
	assert.False(t, r.HasErrors())
}
