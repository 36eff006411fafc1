package structreader

import (
	"context"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/vfilter"
)

// A LambdaOp evaluates a vfilter lambda against the fields parsed so
// far in the current frame. It is emitted for profile options written
// as expressions, e.g. length: "x=>x.Size". The lambda receives an
// ordered dict of the fields declared before it.
type LambdaOp struct {
	expression *vfilter.Lambda
	scope      vfilter.Scope

	// Names declared before this opcode, by frame index.
	names []string
}

func (self *LambdaOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	this_obj := ordereddict.NewDict()

	fr := ctx.current()
	for i, name := range self.names {
		if name == "" || i >= len(fr.values) {
			continue
		}
		this_obj.Set(name, fr.values[i])
	}

	result := self.expression.Reduce(
		context.Background(), self.scope, []vfilter.Any{this_obj})
	return result, nil
}
