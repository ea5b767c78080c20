package capi

import (
	"slices"
	"strings"
)

const appendSuffix = "_append"

// mergeAppends folds every "<key>_append" list into "<key>" throughout the
// tree. The result never shares list backing arrays with the input, so an
// overlay cannot leak into another section that references the same list.
func mergeAppends(path string, v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range sortedKeys(t) {
			if strings.HasSuffix(k, appendSuffix) {
				continue
			}
			child, err := mergeAppends(path, t[k])
			if err != nil {
				return nil, err
			}
			out[k] = child
		}

		for _, k := range sortedKeys(t) {
			base, ok := strings.CutSuffix(k, appendSuffix)
			if !ok || base == "" {
				continue
			}
			extra, err := mergeAppends(path, t[k])
			if err != nil {
				return nil, err
			}
			extraList, ok := extra.([]any)
			if !ok {
				return nil, violation(path, k, "append overlay must be a list")
			}
			existing, present := out[base]
			if !present {
				out[base] = slices.Clone(extraList)
				continue
			}
			baseList, ok := existing.([]any)
			if !ok {
				return nil, violation(path, k, "append target must be a list")
			}
			out[base] = slices.Concat(baseList, extraList)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			child, err := mergeAppends(path, item)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	default:
		return v, nil
	}
}
