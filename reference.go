package structreader

import (
	"fmt"
)

// A RefOp is a positional back reference to a field declared earlier
// in the same frame. The index is resolved at compile time - the
// interpreter never looks names up. A dotted tail descends into the
// referenced value.
type RefOp struct {
	name  string
	index int
	path  []string
}

func (self *RefOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	fr := ctx.current()
	if self.index >= len(fr.values) {
		return nil, fmt.Errorf("%w: %v", UnresolvedReferenceError, self.name)
	}

	value := fr.values[self.index]
	for _, field := range self.path {
		next, ok := member(value, field)
		if !ok {
			return nil, fmt.Errorf("%w: %v", UnresolvedReferenceError, self.name)
		}
		value = next
	}
	return value, nil
}

// A LiteralOp produces a constant without touching the stream.
type LiteralOp struct {
	value interface{}
}

func (self *LiteralOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	return self.value, nil
}
