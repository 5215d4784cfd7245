package options

import (
	"maps"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// ContainerKey is the top-level key holding option entries in both the
// shared config and the per-user overlay.
const ContainerKey = "optionSet"

// Keys inside a persisted option entry.
const (
	projectValueKey = "p"
	targetValuesKey = "t"
)

// Values is a raw option map keyed by option name, as read from a container.
type Values map[string]any

// ErrInvalidContainer indicates the option container or one of its entries
// does not have the expected shape.
var ErrInvalidContainer = errors.New("invalid option container")

// EntryError describes an option entry that could not be decoded.
type EntryError struct {
	Key string
	Err error
}

func (e *EntryError) Error() string {
	return "option " + e.Key + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// rawEntry mirrors the persisted form {"p": <common>, "t": {<label>: <value>}}.
type rawEntry struct {
	Project any            `mapstructure:"p"`
	Targets map[string]any `mapstructure:"t"`
}

// Extract reads the option container out of a decoded config object.
// A missing container yields an empty map. Entries for recognized keys are
// decoded eagerly so shape problems are reported against the container they
// came from; unrecognized keys are passed through untouched.
func (s *Schema) Extract(container map[string]any) (Values, error) {
	raw, ok := container[ContainerKey]
	if !ok || raw == nil {
		return Values{}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidContainer, "%q must be an object, got %T", ContainerKey, raw)
	}

	for key, entry := range obj {
		def, known := s.Lookup(Key(key))
		if !known {
			continue
		}
		if _, err := decodeEntry(def, entry); err != nil {
			return nil, errors.Mark(&EntryError{Key: key, Err: err}, ErrInvalidContainer)
		}
	}

	return Values(maps.Clone(obj)), nil
}

// Merge returns a new map holding every key of shared, with any key present
// in perUser replacing the shared value. Neither input is modified.
func Merge(shared, perUser Values) Values {
	merged := make(Values, len(shared)+len(perUser))
	maps.Copy(merged, shared)
	maps.Copy(merged, perUser)
	return merged
}

func decodeEntry(def Definition, entry any) (Value, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Value{}, errors.Newf("entry must be an object, got %T", entry)
	}

	var re rawEntry
	if err := mapstructure.Decode(obj, &re); err != nil {
		return Value{}, errors.Wrap(err, "decoding entry")
	}

	var v Value
	if re.Project != nil {
		common, err := coerce(def.Kind, re.Project)
		if err != nil {
			return Value{}, errors.Wrapf(err, "field %q", projectValueKey)
		}
		v.common = &common
	}

	if len(re.Targets) > 0 {
		v.targets = make(map[string]string, len(re.Targets))
		for label, tv := range re.Targets {
			s, err := coerce(def.Kind, tv)
			if err != nil {
				return Value{}, errors.Wrapf(err, "field %q, target %q", targetValuesKey, label)
			}
			v.targets[label] = s
		}
	}

	return v, nil
}

// coerce converts a decoded JSON scalar into the string form used for kind.
func coerce(kind Kind, in any) (string, error) {
	switch kind {
	case KindBool:
		if s, ok := in.(string); ok {
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "YES":
				return "YES", nil
			case "NO":
				return "NO", nil
			}
		}
		b, err := cast.ToBoolE(in)
		if err != nil {
			return "", errors.Wrapf(err, "expected a boolean")
		}
		if b {
			return "YES", nil
		}
		return "NO", nil
	default:
		s, err := cast.ToStringE(in)
		if err != nil {
			return "", errors.Wrapf(err, "expected a string")
		}
		return s, nil
	}
}
