package structreader

import (
	"encoding/binary"
	"math"
)

// Parse various sizes of ints.
type IntOp struct {
	type_name string
	size      int
	converter func(buf []byte) interface{}
}

func (self *IntOp) String() string {
	return self.type_name
}

func (self *IntOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	buf, err := stream.Read(self.size)
	if err != nil {
		return nil, err
	}
	return self.converter(buf), nil
}

func NewIntOp(type_name string, size int, converter func(buf []byte) interface{}) *IntOp {
	return &IntOp{
		type_name: type_name,
		size:      size,
		converter: converter,
	}
}

// intConverter builds the byte to integer conversion for a width.
// Unsigned values are produced as uint64, signed ones as two's
// complement int64.
func intConverter(size int, signed bool, big_endian bool) func(buf []byte) interface{} {
	order := binary.ByteOrder(binary.LittleEndian)
	if big_endian {
		order = binary.BigEndian
	}

	switch {
	case size == 1 && signed:
		return func(buf []byte) interface{} {
			return int64(int8(buf[0]))
		}
	case size == 1:
		return func(buf []byte) interface{} {
			return uint64(buf[0])
		}
	case size == 2 && signed:
		return func(buf []byte) interface{} {
			return int64(int16(order.Uint16(buf)))
		}
	case size == 2:
		return func(buf []byte) interface{} {
			return uint64(order.Uint16(buf))
		}
	case size == 4 && signed:
		return func(buf []byte) interface{} {
			return int64(int32(order.Uint32(buf)))
		}
	case size == 4:
		return func(buf []byte) interface{} {
			return uint64(order.Uint32(buf))
		}
	case size == 8 && signed:
		return func(buf []byte) interface{} {
			return int64(order.Uint64(buf))
		}
	case size == 8:
		return func(buf []byte) interface{} {
			return order.Uint64(buf)
		}
	}

	// Odd widths (24, 40, 48, 56 bit) are widened to 8 bytes first.
	return func(buf []byte) interface{} {
		padded := make([]byte, 8)
		if big_endian {
			copy(padded[8-size:], buf)
		} else {
			copy(padded, buf)
		}
		value := order.Uint64(padded)
		if signed {
			shift := uint(64 - size*8)
			return int64(value<<shift) >> shift
		}
		return value
	}
}

// Parse IEEE 754 floats of 32 or 64 bits. Both widths are produced as
// float64.
type FloatOp struct {
	size  int
	order binary.ByteOrder
}

func (self *FloatOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	buf, err := stream.Read(self.size)
	if err != nil {
		return nil, err
	}

	if self.size == 4 {
		return float64(math.Float32frombits(self.order.Uint32(buf))), nil
	}
	return math.Float64frombits(self.order.Uint64(buf)), nil
}

func NewFloatOp(size int, big_endian bool) *FloatOp {
	result := &FloatOp{size: size, order: binary.LittleEndian}
	if big_endian {
		result.order = binary.BigEndian
	}
	return result
}
