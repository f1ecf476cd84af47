package docstore

import (
	"encoding/json"
	"fmt"
)

// Encode turns a tagged struct into document fields through its JSON form.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return fields, nil
}

// Decode fills v from document fields through their JSON form.
func Decode(fields map[string]any, v any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// normalize round-trips fields through JSON so every backend stores the same
// value shapes (numbers as float64, times as RFC 3339 strings).
func normalize(fields map[string]any) (map[string]any, error) {
	if fields == nil {
		return map[string]any{}, nil
	}
	return Encode(fields)
}
