// Package options owns the generator option schema: which option keys are
// recognized, their value kind, and whether a value is persisted in the
// shared config or in the per-user overlay.
//
// Both config files store options under the same [ContainerKey] object:
//
//	"optionSet": {
//	  "BazelBuildOptionsDebug": {"p": "--config=dbg", "t": {"//app:App": "--config=app"}},
//	  "IncludeBuildSources":    {"p": "YES"}
//	}
//
// Loading is split into three steps so each input can be validated on its
// own and the merge stays a pure function ([Merge]):
//
//	shared, err := schema.Extract(primary)
//	overlay, err := schema.Extract(perUser)
//	set, err := schema.BuildLayers(shared, overlay)
//
// Saving goes the other way: [Set.SaveShared] and [Set.SavePerUser] inject
// the entries for one scope into a map that is about to be encoded.
// Unrecognized keys go back to the file they were read from.
package options
