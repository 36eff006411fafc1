package structreader

// A ListOp reads a fixed or field dependent number of elements. The
// element opcode runs against the enclosing frame, so it may
// reference fields declared before the list; compound elements create
// their own sub frames.
type ListOp struct {
	count Opcode
	elem  Opcode
}

func (self *ListOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	count, err := evalCount(self.count, ctx, stream)
	if err != nil {
		return nil, err
	}

	// The count comes from the input - do not trust it for
	// preallocation.
	capacity := count
	if capacity > 1024 {
		capacity = 1024
	}

	result := make([]interface{}, 0, capacity)
	for i := int64(0); i < count; i++ {
		value, err := self.elem.Eval(ctx, stream)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}

	return result, nil
}
