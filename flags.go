package structreader

import (
	"fmt"
	"sort"
)

// A FlagsOp expands the bitmask read by its inner opcode into the
// names of the set bits, ordered by bit number.
type FlagsOp struct {
	inner  Opcode
	bits   []int64
	bitmap map[int64]string
}

func NewFlagsOp(inner Opcode, bitmap map[int64]string) (*FlagsOp, error) {
	result := &FlagsOp{
		inner:  inner,
		bitmap: make(map[int64]string),
	}

	for bit, name := range bitmap {
		if bit < 0 || bit > 63 {
			return nil, fmt.Errorf("%w: flag bit %v out of range",
				ProgramError, bit)
		}
		result.bitmap[bit] = name
		result.bits = append(result.bits, bit)
	}

	sort.Slice(result.bits, func(i, j int) bool {
		return result.bits[i] < result.bits[j]
	})

	return result, nil
}

func (self *FlagsOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	value, err := self.inner.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	ivalue, ok := to_int64(value)
	if !ok {
		return nil, fmt.Errorf("%w: flags over %T", ProgramError, value)
	}

	result := []string{}
	for _, bit := range self.bits {
		if uint64(ivalue)&(uint64(1)<<uint(bit)) != 0 {
			result = append(result, self.bitmap[bit])
		}
	}
	return result, nil
}
