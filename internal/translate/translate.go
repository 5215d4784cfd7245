// Package translate renders JSON config documents in other formats for
// display.
package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// as an alias for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, yaml or toml)", s)
	}
}

// FromJSON converts a JSON document to format. JSON input is returned
// unchanged.
func FromJSON(jsonData []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		return jsonData, nil
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	data = normalize(data, format == FormatTOML)

	switch format {
	case FormatYAML:
		return JSONToYAML(data)
	case FormatTOML:
		return JSONToTOML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// JSONToYAML marshals decoded JSON data as YAML.
func JSONToYAML(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("marshaling yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONToTOML marshals decoded JSON data as TOML. The top level must be an
// object.
func JSONToTOML(data any) ([]byte, error) {
	if _, ok := data.(map[string]any); !ok {
		return nil, fmt.Errorf("marshaling toml: top level must be an object, got %T", data)
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("marshaling toml: %w", err)
	}
	return buf.Bytes(), nil
}

// normalize turns json.Number into int64 or float64. TOML has no null, so
// dropNull removes null object members.
func normalize(v any, dropNull bool) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			if item == nil && dropNull {
				continue
			}
			out[k] = normalize(item, dropNull)
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if item == nil && dropNull {
				continue
			}
			out = append(out, normalize(item, dropNull))
		}
		return out
	default:
		return v
	}
}
