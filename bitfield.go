package structreader

import (
	"fmt"
)

// A BitfieldOp extracts the bit range [start_bit, end_bit) from the
// integer read by its inner opcode.
type BitfieldOp struct {
	inner     Opcode
	start_bit int64
	end_bit   int64
}

func NewBitfieldOp(inner Opcode, start_bit, end_bit int64) (*BitfieldOp, error) {
	if start_bit < 0 || end_bit > 64 || start_bit >= end_bit {
		return nil, fmt.Errorf("%w: bit range [%v, %v)",
			ProgramError, start_bit, end_bit)
	}

	return &BitfieldOp{
		inner:     inner,
		start_bit: start_bit,
		end_bit:   end_bit,
	}, nil
}

func (self *BitfieldOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	value, err := self.inner.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	ivalue, ok := to_int64(value)
	if !ok {
		return nil, fmt.Errorf("%w: bitfield over %T", ProgramError, value)
	}

	width := uint(self.end_bit - self.start_bit)
	mask := uint64(1)<<width - 1
	if width == 64 {
		mask = ^uint64(0)
	}

	return (uint64(ivalue) >> uint(self.start_bit)) & mask, nil
}
