package options

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverlayOverridesPerKey(t *testing.T) {
	shared := Values{"a": 1, "b": 2}
	overlay := Values{"b": 3, "c": 4}

	merged := Merge(shared, overlay)

	assert.Equal(t, Values{"a": 1, "b": 3, "c": 4}, merged)
	// inputs are untouched
	assert.Equal(t, Values{"a": 1, "b": 2}, shared)
	assert.Equal(t, Values{"b": 3, "c": 4}, overlay)
}

func TestMerge_NilInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	assert.Equal(t, Values{"a": 1}, Merge(Values{"a": 1}, nil))
	assert.Equal(t, Values{"a": 1}, Merge(nil, Values{"a": 1}))
}

func TestExtract(t *testing.T) {
	schema := DefaultSchema()

	t.Run("missing container", func(t *testing.T) {
		got, err := schema.Extract(map[string]any{"projectName": "x"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("null container", func(t *testing.T) {
		got, err := schema.Extract(map[string]any{ContainerKey: nil})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("container not an object", func(t *testing.T) {
		_, err := schema.Extract(map[string]any{ContainerKey: []any{"x"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidContainer))
	})

	t.Run("known entry not an object", func(t *testing.T) {
		_, err := schema.Extract(map[string]any{ContainerKey: map[string]any{
			string(BazelPath): "/usr/bin/bazel",
		}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidContainer))

		var entryErr *EntryError
		require.True(t, errors.As(err, &entryErr))
		assert.Equal(t, string(BazelPath), entryErr.Key)
	})

	t.Run("bool entry with garbage", func(t *testing.T) {
		_, err := schema.Extract(map[string]any{ContainerKey: map[string]any{
			string(IncludeBuildSources): map[string]any{"p": "maybe"},
		}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidContainer))
	})

	t.Run("unknown entries pass through", func(t *testing.T) {
		got, err := schema.Extract(map[string]any{ContainerKey: map[string]any{
			"SomeFutureOption": "anything",
		}})
		require.NoError(t, err)
		assert.Equal(t, Values{"SomeFutureOption": "anything"}, got)
	})
}

func TestBuild_CoercesValues(t *testing.T) {
	set, err := DefaultSchema().Build(Values{
		string(IncludeBuildSources):      map[string]any{"p": true},
		string(GenerateRunfiles):         map[string]any{"p": "yes"},
		string(SuppressSwiftWMOWarning):  map[string]any{"p": "false"},
		string(ClangCXXLanguageStandard): map[string]any{"p": float64(17)},
		string(BazelBuildOptionsDebug): map[string]any{
			"p": "--config=dbg",
			"t": map[string]any{"//app:App": "--config=app"},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		key  Key
		want string
	}{
		{IncludeBuildSources, "YES"},
		{GenerateRunfiles, "YES"},
		{SuppressSwiftWMOWarning, "NO"},
		{ClangCXXLanguageStandard, "17"},
		{BazelBuildOptionsDebug, "--config=dbg"},
	}
	for _, tt := range tests {
		got, ok := set.CommonValue(tt.key)
		assert.True(t, ok, "CommonValue(%s)", tt.key)
		assert.Equal(t, tt.want, got, "CommonValue(%s)", tt.key)
	}

	v, ok := set.Value(BazelBuildOptionsDebug)
	require.True(t, ok)
	tv, ok := v.Target("//app:App")
	assert.True(t, ok)
	assert.Equal(t, "--config=app", tv)
}

func TestSet_Effective(t *testing.T) {
	set := NewSet(nil).
		With(CommandlineArguments, CommonValue("-v").WithTarget("//app:App", "-vv"))

	got, ok := set.Effective(CommandlineArguments, "//app:App")
	assert.True(t, ok)
	assert.Equal(t, "-vv", got)

	got, ok = set.Effective(CommandlineArguments, "//other:Other")
	assert.True(t, ok)
	assert.Equal(t, "-v", got)

	got, ok = set.Effective(ImprovedImportAutocompletionFix, "")
	assert.True(t, ok, "schema default should apply")
	assert.Equal(t, "YES", got)

	_, ok = set.Effective(BazelPath, "")
	assert.False(t, ok)
}

func TestSet_WithIsCopyOnWrite(t *testing.T) {
	base := NewSet(nil)
	withPath := base.With(BazelPath, CommonValue("/opt/bazel"))

	_, ok := base.CommonValue(BazelPath)
	assert.False(t, ok, "original set must not change")

	got, ok := withPath.CommonValue(BazelPath)
	assert.True(t, ok)
	assert.Equal(t, "/opt/bazel", got)

	removed := withPath.With(BazelPath, Value{})
	_, ok = removed.CommonValue(BazelPath)
	assert.False(t, ok, "zero value removes the key")
}

func TestValue_Targets(t *testing.T) {
	v := CommonValue("x").WithTarget("//b:B", "1").WithTarget("//a:A", "2")
	assert.Equal(t, []string{"//a:A", "//b:B"}, v.Targets())
	assert.Empty(t, CommonValue("x").Targets())
}

func TestSet_SaveByScope(t *testing.T) {
	set, err := DefaultSchema().Build(Values{
		string(BazelPath):           map[string]any{"p": "/usr/local/bin/bazel"},
		string(IncludeBuildSources): map[string]any{"p": "YES"},
		"FutureOption":              map[string]any{"p": "kept"},
	})
	require.NoError(t, err)

	shared := map[string]any{}
	set.SaveShared(shared)
	assert.Equal(t, map[string]any{
		ContainerKey: map[string]any{
			string(IncludeBuildSources): map[string]any{"p": "YES"},
			"FutureOption":              map[string]any{"p": "kept"},
		},
	}, shared)

	perUser := map[string]any{}
	set.SavePerUser(perUser)
	assert.Equal(t, map[string]any{
		ContainerKey: map[string]any{
			string(BazelPath): map[string]any{"p": "/usr/local/bin/bazel"},
		},
	}, perUser)

	assert.Equal(t, []string{"FutureOption"}, set.Unknown())
	assert.Equal(t, []Key{BazelPath, IncludeBuildSources}, set.Keys())
	assert.Equal(t, 3, set.Len())
}

func TestSet_UnknownKeysKeepTheirLayer(t *testing.T) {
	set, err := DefaultSchema().BuildLayers(
		Values{
			string(IncludeBuildSources): map[string]any{"p": "NO"},
			"SharedFuture":              map[string]any{"p": "team"},
			"Both":                      map[string]any{"p": "shared"},
		},
		Values{
			string(IncludeBuildSources): map[string]any{"p": "YES"},
			"PrivateToken":              map[string]any{"p": "secret"},
			"Both":                      map[string]any{"p": "mine"},
		},
	)
	require.NoError(t, err)

	got, _ := set.CommonValue(IncludeBuildSources)
	assert.Equal(t, "YES", got, "recognized keys take the overlay value")

	shared := map[string]any{}
	set.SaveShared(shared)
	assert.Equal(t, map[string]any{
		ContainerKey: map[string]any{
			string(IncludeBuildSources): map[string]any{"p": "YES"},
			"SharedFuture":              map[string]any{"p": "team"},
			"Both":                      map[string]any{"p": "shared"},
		},
	}, shared)

	perUser := map[string]any{}
	set.SavePerUser(perUser)
	assert.Equal(t, map[string]any{
		ContainerKey: map[string]any{
			"PrivateToken": map[string]any{"p": "secret"},
			"Both":         map[string]any{"p": "mine"},
		},
	}, perUser)

	assert.Equal(t, []string{"Both", "PrivateToken", "SharedFuture"}, set.Unknown())
	assert.Equal(t, []string{"Both", "SharedFuture"}, set.UnknownIn(ScopeShared))
	assert.Equal(t, []string{"Both", "PrivateToken"}, set.UnknownIn(ScopePerUser))
	assert.Equal(t, 4, set.Len())

	edited := set.With(IncludeBuildSources, Value{})
	assert.Equal(t, []string{"Both", "PrivateToken"}, edited.UnknownIn(ScopePerUser), "With keeps the layers")
}

func TestSet_SaveNothing(t *testing.T) {
	set := NewSet(nil).With(IncludeBuildSources, CommonValue("YES"))

	perUser := map[string]any{}
	set.SavePerUser(perUser)
	assert.Empty(t, perUser, "no per-user values means no container")
}

func TestSchema_LookupAndKeys(t *testing.T) {
	schema := DefaultSchema()

	def, ok := schema.Lookup(BazelPath)
	require.True(t, ok)
	assert.Equal(t, ScopePerUser, def.Scope)
	assert.Equal(t, KindString, def.Kind)

	_, ok = schema.Lookup("NotAnOption")
	assert.False(t, ok)

	keys := schema.Keys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, ImprovedImportAutocompletionFix)
}

func TestKindAndScope_String(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "bool", KindBool.String())
	assert.Equal(t, "shared", ScopeShared.String())
	assert.Equal(t, "per-user", ScopePerUser.String())
}
