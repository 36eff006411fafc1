package structreader

import (
	"fmt"
)

// A MatchOp selects one of an ordered branch table by an integer
// discriminant and executes it in the current frame. Branches are
// positional: the caller provides them in ascending discriminant
// order starting at 0.
type MatchOp struct {
	cond     Opcode
	branches []Opcode
}

func (self *MatchOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	value, err := self.cond.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	idx, ok := to_int64(value)
	if !ok {
		return nil, fmt.Errorf("%w: discriminant %v (%T)",
			NoMatchError, value, value)
	}

	if idx < 0 || idx >= int64(len(self.branches)) {
		return nil, fmt.Errorf("%w: discriminant %v with %v branches",
			NoMatchError, idx, len(self.branches))
	}

	return self.branches[idx].Eval(ctx, stream)
}
