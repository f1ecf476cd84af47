package docstore

import (
	"fmt"
	"reflect"
	"time"
)

// applyPatch resolves sentinels in patch against base and returns the merged
// field set. base is not modified.
func applyPatch(base, patch map[string]any, now time.Time) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		switch op := v.(type) {
		case serverTimestamp:
			out[k] = now.UTC().Format(time.RFC3339Nano)
		case ArrayOp:
			current, _ := out[k].([]any)
			next, err := applyArrayOp(current, op)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = next
		default:
			norm, err := normalizeValue(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = norm
		}
	}
	return out, nil
}

func applyArrayOp(current []any, op ArrayOp) ([]any, error) {
	values := make([]any, 0, len(op.Values))
	for _, v := range op.Values {
		norm, err := normalizeValue(v)
		if err != nil {
			return nil, err
		}
		values = append(values, norm)
	}
	out := make([]any, 0, len(current)+len(values))
	if op.Union {
		out = append(out, current...)
		for _, v := range values {
			if !containsValue(out, v) {
				out = append(out, v)
			}
		}
		return out, nil
	}
	for _, c := range current {
		if !containsValue(values, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func normalizeValue(v any) (any, error) {
	wrapped, err := normalize(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return wrapped["v"], nil
}

// matches reports whether a stored document satisfies filter.
func matches(doc Document, filter *Filter) bool {
	if filter == nil {
		return true
	}
	if filter.Field == IDField {
		id, _ := filter.Value.(string)
		return doc.ID == id
	}
	want, err := normalizeValue(filter.Value)
	if err != nil {
		return false
	}
	got, ok := doc.Fields[filter.Field]
	return ok && reflect.DeepEqual(got, want)
}
