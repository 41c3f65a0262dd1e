package core

import (
	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/util"
)

// As[T] converts a control payload to T. It accepts T, a non-nil *T, or a
// JSON-shaped value (map, []byte, string). A nil payload is the zero T.
func As[T any](v any) (T, errcode.Code) {
	var zero T
	switch x := v.(type) {
	case nil:
		return zero, ""
	case T:
		return x, ""
	case *T:
		if x == nil {
			return zero, errcode.InvalidPayload
		}
		return *x, ""
	case map[string]any, []byte, string:
		var out T
		if err := util.DecodeJSON(x, &out); err != nil {
			return zero, errcode.InvalidPayload
		}
		return out, ""
	}
	return zero, errcode.InvalidPayload
}
