// Package resource maps local structs onto the JSON objects of the REST
// model. Field names come from json struct tags on both directions.
package resource

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// ToMap serializes v into a JSON object.
func ToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("resource: encode %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("resource: %T is not an object: %w", v, err)
	}
	return m, nil
}

// Merge copies the keys of src onto the fields of dst, a struct pointer.
// Keys absent from src, and keys whose value is null, leave the field
// untouched. Unknown keys are ignored.
func Merge(dst any, src map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           dst,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
		),
	})
	if err != nil {
		return fmt.Errorf("resource: %w", err)
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("resource: merge into %T: %w", dst, err)
	}
	return nil
}

// Fields returns the JSON field names v serializes, in no particular order.
func Fields(v any) ([]string, error) {
	m, err := ToMap(v)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	return names, nil
}
