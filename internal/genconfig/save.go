package genconfig

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Save encodes the shared part of the config as indented JSON. Build target
// labels and path filters are sorted so repeated saves are byte-identical;
// additional file paths keep their order.
func (c *Config) Save() ([]byte, error) {
	labels := slices.Clone(c.buildTargetLabels)
	slices.Sort(labels)

	dict := map[string]any{
		keyProjectName:   c.projectName,
		keyBuildTargets:  labels,
		keySourceFilters: c.PathFilters(),
	}
	if c.additionalFilePaths != nil {
		dict[keyAdditionalFilePaths] = c.additionalFilePaths
	}
	c.options.SaveShared(dict)

	return encode(dict)
}

// SavePerUserSettings encodes only the per-user option values. When there
// are none it returns ok=false and no data; callers should not create an
// overlay file in that case.
func (c *Config) SavePerUserSettings() (data []byte, ok bool, err error) {
	dict := map[string]any{}
	c.options.SavePerUser(dict)
	if len(dict) == 0 {
		return nil, false, nil
	}

	data, err = encode(dict)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// encode writes v with two-space indentation and a trailing newline.
// Map keys are sorted by encoding/json. HTML escaping is off so shell
// snippets such as "a && b" stay readable in hand-edited files.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, newError(ErrSerialization, "", err, "")
	}
	return buf.Bytes(), nil
}
