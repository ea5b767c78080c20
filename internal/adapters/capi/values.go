package capi

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
)

// normalize converts a decoded YAML tree into plain map[string]any / []any
// values. Null map entries are dropped so that an empty section behaves like
// an absent one.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if child == nil {
				continue
			}
			out[k] = normalize(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if child == nil {
				continue
			}
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalize(child)
		}
		return out
	case time.Time:
		return t.Format(time.DateOnly)
	default:
		return v
	}
}

func violation(path, field, reason string) error {
	err := zerr.With(domain.ErrSchemaViolation, "path", path)
	err = zerr.With(err, "field", field)
	return zerr.With(err, "reason", reason)
}

// scalarString renders a YAML scalar as text. Version-like numbers such as
// 1.0 are kept in their shortest form.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asString(path, field string, v any) (string, error) {
	s, ok := scalarString(v)
	if !ok {
		return "", violation(path, field, "expected a string")
	}
	return s, nil
}

// asStringList accepts a list of scalars or a single scalar.
func asStringList(path, field string, v any) ([]string, error) {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := scalarString(item)
			if !ok {
				return nil, violation(path, field, "expected a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		s, ok := scalarString(v)
		if !ok {
			return nil, violation(path, field, "expected a list of strings")
		}
		return []string{s}, nil
	}
}

// asWords accepts a list or a whitespace separated string.
func asWords(path, field string, v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return strings.Fields(s), nil
	}
	return asStringList(path, field, v)
}

func asBool(path, field string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, violation(path, field, "expected a boolean")
		}
		return b, nil
	case int:
		return t != 0, nil
	default:
		return false, violation(path, field, "expected a boolean")
	}
}

func asMap(path, field string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, violation(path, field, "expected a mapping")
	}
	return m, nil
}

// sortedKeys returns the keys of m in lexical order so that warnings and
// errors are reported deterministically.
func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
