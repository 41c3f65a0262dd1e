// Package util holds small helpers shared by the HAL core and devices.
package util

import "encoding/json"

// DecodeJSON fills dst from src. src may already be a T or *T, raw JSON
// ([]byte or string), or a JSON-shaped value such as the maps the config
// service publishes, which round-trips through encoding/json.
func DecodeJSON[T any](src any, dst *T) error {
	var raw []byte
	switch v := src.(type) {
	case T:
		*dst = v
		return nil
	case *T:
		if v != nil {
			*dst = *v
			return nil
		}
		raw = []byte("null")
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = b
	}
	return json.Unmarshal(raw, dst)
}
