package structreader

// Reads an unsigned LEB128 integer: bytes are consumed until one with
// the top bit clear, the low 7 bits accumulate little endian first. A
// value exceeding 64 bits is a MalformedVarintError.
type UvarintOp struct{}

func (self *UvarintOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	var result uint64
	var shift uint

	for {
		buf, err := stream.Read(1)
		if err != nil {
			return nil, err
		}

		b := buf[0]
		if shift > 63 || (shift == 63 && b > 1) {
			return nil, MalformedVarintError
		}

		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// Reads a single byte as a boolean. Any non zero value is true.
type BoolOp struct{}

func (self *BoolOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	buf, err := stream.Read(1)
	if err != nil {
		return nil, err
	}
	return buf[0] != 0, nil
}
