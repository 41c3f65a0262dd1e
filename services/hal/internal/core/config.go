package core

import (
	"errors"

	"audiocodec-go/services/hal/internal/util"
	"audiocodec-go/types"
)

var errBadConfig = errors.New("hal config: unsupported payload")

// DecodeHALConfig accepts a typed HALConfig or the JSON-shaped value the
// config service publishes. Device params stay JSON-shaped for builders.
func DecodeHALConfig(v any) (types.HALConfig, error) {
	switch x := v.(type) {
	case types.HALConfig:
		return x, nil
	case *types.HALConfig:
		if x != nil {
			return *x, nil
		}
	case map[string]any, []any, []byte, string:
		var cfg types.HALConfig
		if arr, ok := x.([]any); ok {
			// Bare device list.
			if err := util.DecodeJSON(arr, &cfg.Devices); err != nil {
				return types.HALConfig{}, err
			}
			return cfg, nil
		}
		if err := util.DecodeJSON(x, &cfg); err != nil {
			return types.HALConfig{}, err
		}
		return cfg, nil
	}
	return types.HALConfig{}, errBadConfig
}
