package structreader

import (
	"fmt"
	"io"
)

// A SeekOp moves the cursor without producing a value. It still
// occupies a program slot (with a nil placeholder) so that value
// indices keep matching program positions.
type SeekOp struct {
	offset Opcode
	whence int
}

func (self *SeekOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	value, err := self.offset.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	offset, ok := to_int64(value)
	if !ok {
		return nil, fmt.Errorf("%w: offset %v (%T)",
			InvalidSeekError, value, value)
	}

	return nil, stream.Seek(offset, self.whence)
}

// A PeekOp runs its inner opcode and rewinds the cursor to where it
// was. The inner value is captured; the net cursor movement is zero.
type PeekOp struct {
	inner Opcode
}

func (self *PeekOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	pos := stream.Tell()

	value, err := self.inner.Eval(ctx, stream)
	if err != nil {
		return nil, err
	}

	err = stream.Seek(pos, io.SeekStart)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// A PosOp captures the current cursor offset without reading.
type PosOp struct{}

func (self *PosOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	return stream.Tell(), nil
}
