package options

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
)

// Value is the typed value of a single option: an optional common value
// plus optional per-target overrides keyed by target label.
type Value struct {
	common  *string
	targets map[string]string
}

// CommonValue returns a Value holding only a common value.
func CommonValue(s string) Value {
	return Value{common: &s}
}

// WithTarget returns a copy of v with an override for the given target label.
func (v Value) WithTarget(label, s string) Value {
	out := Value{common: v.common, targets: maps.Clone(v.targets)}
	if out.targets == nil {
		out.targets = make(map[string]string, 1)
	}
	out.targets[label] = s
	return out
}

// Common returns the common value and whether one is set.
func (v Value) Common() (string, bool) {
	if v.common == nil {
		return "", false
	}
	return *v.common, true
}

// Target returns the override for label and whether one is set.
func (v Value) Target(label string) (string, bool) {
	s, ok := v.targets[label]
	return s, ok
}

// Targets returns the labels that have an override, sorted.
func (v Value) Targets() []string {
	labels := slices.Collect(maps.Keys(v.targets))
	slices.Sort(labels)
	return labels
}

// IsZero reports whether the value carries nothing worth persisting.
func (v Value) IsZero() bool {
	return v.common == nil && len(v.targets) == 0
}

func (v Value) persisted() map[string]any {
	out := make(map[string]any, 2)
	if v.common != nil {
		out[projectValueKey] = *v.common
	}
	if len(v.targets) > 0 {
		t := make(map[string]any, len(v.targets))
		for label, s := range v.targets {
			t[label] = s
		}
		out[targetValuesKey] = t
	}
	return out
}

// Set is an immutable typed option collection. The zero value is not usable;
// construct one with NewSet, Schema.Build or Schema.BuildLayers.
//
// Unrecognized keys remember which file they were read from so each is
// written back to the same file.
type Set struct {
	schema      *Schema
	values      map[Key]Value
	unknown     map[string]any
	userUnknown map[string]any
}

// NewSet returns an empty set backed by schema (DefaultSchema when nil).
func NewSet(schema *Schema) *Set {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Set{
		schema:      schema,
		values:      map[Key]Value{},
		unknown:     map[string]any{},
		userUnknown: map[string]any{},
	}
}

// Build decodes a single raw map into a typed Set. Keys the schema does not
// recognize are kept verbatim and written back with the shared options.
func (s *Schema) Build(raw Values) (*Set, error) {
	return s.BuildLayers(raw, nil)
}

// BuildLayers merges perUser over shared and decodes the result. Recognized
// keys take the merged value. Unrecognized keys stay with the layer they came
// from: SaveShared writes the shared ones and SavePerUser the per-user ones.
func (s *Schema) BuildLayers(shared, perUser Values) (*Set, error) {
	set := NewSet(s)
	for key, entry := range shared {
		if _, known := s.Lookup(Key(key)); !known {
			set.unknown[key] = entry
		}
	}
	for key, entry := range perUser {
		if _, known := s.Lookup(Key(key)); !known {
			set.userUnknown[key] = entry
		}
	}

	for key, entry := range Merge(shared, perUser) {
		def, known := s.Lookup(Key(key))
		if !known {
			continue
		}
		v, err := decodeEntry(def, entry)
		if err != nil {
			return nil, errors.Mark(&EntryError{Key: key, Err: err}, ErrInvalidContainer)
		}
		if !v.IsZero() {
			set.values[def.Key] = v
		}
	}
	return set, nil
}

// Schema returns the schema the set was built against.
func (s *Set) Schema() *Schema {
	return s.schema
}

// With returns a copy of the set with key bound to v. A zero v removes the key.
func (s *Set) With(key Key, v Value) *Set {
	out := &Set{
		schema:      s.schema,
		values:      maps.Clone(s.values),
		unknown:     maps.Clone(s.unknown),
		userUnknown: maps.Clone(s.userUnknown),
	}
	if v.IsZero() {
		delete(out.values, key)
	} else {
		out.values[key] = v
	}
	return out
}

// Value returns the stored value for key.
func (s *Set) Value(key Key) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// CommonValue returns the common value recorded for key, ignoring defaults.
func (s *Set) CommonValue(key Key) (string, bool) {
	v, ok := s.values[key]
	if !ok {
		return "", false
	}
	return v.Common()
}

// Effective resolves key for a target: target override, then common value,
// then the schema default. An empty target skips the override lookup.
func (s *Set) Effective(key Key, target string) (string, bool) {
	if v, ok := s.values[key]; ok {
		if target != "" {
			if tv, ok := v.Target(target); ok {
				return tv, true
			}
		}
		if c, ok := v.Common(); ok {
			return c, true
		}
	}
	if def, ok := s.schema.Lookup(key); ok && def.Default != "" {
		return def.Default, true
	}
	return "", false
}

// Keys returns the keys that have a stored value, sorted.
func (s *Set) Keys() []Key {
	keys := slices.Collect(maps.Keys(s.values))
	slices.Sort(keys)
	return keys
}

// Unknown returns the unrecognized option keys from either layer, sorted.
func (s *Set) Unknown() []string {
	keys := slices.Collect(maps.Keys(s.unknown))
	for key := range s.userUnknown {
		if _, ok := s.unknown[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// UnknownIn returns the unrecognized keys read from the given layer, sorted.
func (s *Set) UnknownIn(scope Scope) []string {
	src := s.unknown
	if scope == ScopePerUser {
		src = s.userUnknown
	}
	keys := slices.Collect(maps.Keys(src))
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored values, recognized or not.
func (s *Set) Len() int {
	return len(s.values) + len(s.Unknown())
}

// SaveShared adds shared-scope entries and the unrecognized keys read from
// the shared layer to dict under ContainerKey. Nothing is added when there
// are no such entries.
func (s *Set) SaveShared(dict map[string]any) {
	container := s.collect(ScopeShared)
	maps.Copy(container, s.unknown)
	if len(container) > 0 {
		dict[ContainerKey] = container
	}
}

// SavePerUser adds per-user-scope entries and the unrecognized keys read
// from the per-user layer to dict under ContainerKey. Nothing is added when
// there are no such entries.
func (s *Set) SavePerUser(dict map[string]any) {
	container := s.collect(ScopePerUser)
	maps.Copy(container, s.userUnknown)
	if len(container) > 0 {
		dict[ContainerKey] = container
	}
}

func (s *Set) collect(scope Scope) map[string]any {
	container := make(map[string]any)
	for key, v := range s.values {
		def, ok := s.schema.Lookup(key)
		if !ok || def.Scope != scope {
			continue
		}
		container[string(key)] = v.persisted()
	}
	return container
}
