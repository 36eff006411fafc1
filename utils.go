package structreader

import (
	"fmt"
	"reflect"

	"github.com/Velocidex/ordereddict"
)

func to_int64(x interface{}) (int64, bool) {
	switch t := x.(type) {
	case bool:
		if t {
			return 1, true
		} else {
			return 0, true
		}
	case int:
		return int64(t), true
	case uint8:
		return int64(t), true
	case int8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case int16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case float64:
		return int64(t), true

	default:
		return 0, false
	}
}

// evalCount evaluates a length/count source and coerces it to a non
// negative integer.
func evalCount(op Opcode, ctx *Context, stream *Stream) (int64, error) {
	value, err := op.Eval(ctx, stream)
	if err != nil {
		return 0, err
	}

	result, ok := to_int64(value)
	if f, is_float := value.(float64); is_float && f != float64(result) {
		ok = false
	}
	if !ok || result < 0 {
		return 0, fmt.Errorf("%w: %v (%T)", InvalidLengthError, value, value)
	}
	return result, nil
}

// member descends one step into a parsed value for dotted references.
func member(value interface{}, field string) (interface{}, bool) {
	switch t := value.(type) {
	case *Record:
		return t.Get(field)

	case *ordereddict.Dict:
		return t.Get(field)

	default:
		return nil, false
	}
}

// We need to do this stupid check because Go does not allow
// comparison to nil with interfaces.
func IsNil(v interface{}) bool {
	return v == nil || (reflect.ValueOf(v).Kind() == reflect.Ptr &&
		reflect.ValueOf(v).IsNil())
}
