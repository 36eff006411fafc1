package structreader

import (
	"fmt"
)

// A Callback is a user supplied function invoked by Func fields. Its
// return value is captured as the field value; an error return or a
// panic aborts the parse with a CallbackError.
type Callback func(args ...interface{}) (interface{}, error)

// A GroupOp evaluates each member in declared order and captures the
// results as a positional tuple.
type GroupOp struct {
	members []Opcode
}

func (self *GroupOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	result := make([]interface{}, 0, len(self.members))
	for _, member := range self.members {
		value, err := member.Eval(ctx, stream)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

// A FuncOp evaluates its argument sources and invokes the user
// callable with them. The callable is opaque to the engine.
type FuncOp struct {
	callback Callback
	args     *GroupOp
}

func (self *FuncOp) Eval(ctx *Context, stream *Stream) (value interface{}, err error) {
	args, err := self.args.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %v", CallbackError, r)
		}
	}()

	value, call_err := self.callback(args.([]interface{})...)
	if call_err != nil {
		return nil, fmt.Errorf("%w: %v", CallbackError, call_err)
	}
	return value, nil
}
