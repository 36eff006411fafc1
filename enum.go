package structreader

import (
	"fmt"
)

// An EnumOp maps the integer read by its inner opcode to a symbolic
// name. Values without a mapping render as hex.
type EnumOp struct {
	inner   Opcode
	choices map[int64]string
}

func (self *EnumOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	value, err := self.inner.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	ivalue, ok := to_int64(value)
	if !ok {
		return nil, fmt.Errorf("%w: enum over %T", ProgramError, value)
	}

	name, pres := self.choices[ivalue]
	if !pres {
		name = fmt.Sprintf("%#x", ivalue)
	}
	return name, nil
}
