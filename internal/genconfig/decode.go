package genconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/internal/options"
)

// Decode builds a Config from the bytes of a shared config and, optionally,
// a per-user overlay. A nil perUser means there is no overlay.
func (s *Store) Decode(primary, perUser []byte, toolPathOverride string) (*Config, error) {
	return s.decode("", "", primary, perUser, toolPathOverride)
}

func (s *Store) decode(path, perUserPath string, primary, perUser []byte, toolPathOverride string) (*Config, error) {
	obj, err := decodeObject(primary)
	if err != nil {
		return nil, newError(ErrDeserialization, path, err, "")
	}

	var overlay map[string]any
	if perUser != nil {
		overlay, err = decodeObject(perUser)
		if err != nil {
			return nil, newError(ErrAdditionalOptionsData, perUserPath, err, "")
		}
	}

	f, err := s.extractFields(obj)
	if err != nil {
		return nil, newError(ErrDeserialization, path, err, "")
	}

	shared, err := s.schema.Extract(obj)
	if err != nil {
		return nil, newError(ErrDeserialization, path, err, "")
	}
	var userValues options.Values
	if overlay != nil {
		userValues, err = s.schema.Extract(overlay)
		if err != nil {
			return nil, newError(ErrAdditionalOptionsData, perUserPath, err, "")
		}
		s.logger.Debug("applying per-user options", "path", perUserPath, "keys", len(userValues))
	}

	set, err := s.schema.BuildLayers(shared, userValues)
	if err != nil {
		return nil, newError(ErrDeserialization, path, err, "")
	}
	if unknown := set.Unknown(); len(unknown) > 0 {
		s.logger.Debug("keeping unrecognized options", "keys", unknown)
	}

	f.Options = set
	f.ToolPathOverride = toolPathOverride
	return New(f), nil
}

// extractFields reads everything except options from the shared object.
func (s *Store) extractFields(obj map[string]any) (Fields, error) {
	var f Fields

	if name, ok := obj[keyProjectName].(string); ok {
		f.ProjectName = name
	}

	labels, _, err := stringList(obj, keyBuildTargets)
	if err != nil {
		return Fields{}, err
	}
	f.BuildTargetLabels = labels

	addl, present, err := stringList(obj, keyAdditionalFilePaths)
	if err != nil {
		return Fields{}, err
	}
	if present {
		if addl == nil {
			addl = []string{}
		}
		f.AdditionalFilePaths = addl
	}

	switch chooseFilterSource(obj) {
	case filtersLegacy:
		if _, both := obj[keySourceFilters]; both {
			s.logger.Warn("ignoring sourceFilters because deprecated sourceTargets is present")
		}
		entries, _, err := stringList(obj, keySourceTargets)
		if err != nil {
			return Fields{}, err
		}
		f.PathFilters = ResolveLegacyFilters(entries, s.logger)
		s.logger.Log(context.Background(), logging.LevelTrace, "migrated legacy source targets",
			"entries", len(entries), "filters", len(f.PathFilters))
	case filtersCanonical:
		entries, _, err := stringList(obj, keySourceFilters)
		if err != nil {
			return Fields{}, err
		}
		f.PathFilters = canonicalFilters(entries)
	}

	return f, nil
}

// decodeObject decodes data as a single JSON object. Numbers are kept as
// json.Number so unrecognized values survive a save unchanged.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decoding JSON")
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Newf("expected a JSON object, got %s", jsonKind(v))
	}
	return obj, nil
}

// stringList reads obj[key] as an array of strings. A missing key or JSON
// null reports present=false.
func stringList(obj map[string]any, key string) (list []string, present bool, err error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, true, errors.Newf("%q must be an array of strings, got %s", key, jsonKind(raw))
	}
	list = make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, true, errors.Newf("%q[%d] must be a string, got %s", key, i, jsonKind(item))
		}
		list = append(list, s)
	}
	return list, true, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
