// Implements a declarative binary parsing system.
//
// A structure description - an ordered list of named field readers -
// is compiled into an immutable opcode program which is then executed
// against a seekable byte stream. Programs are compiled once and
// reused many times; every parse gets its own context.
package structreader

import (
	"fmt"
)

// Opcodes are compiled instructions which know how to produce a
// single value from the stream. Opcodes are instantiated once by the
// compiler and reused many times.
type Opcode interface {
	Eval(ctx *Context, stream *Stream) (interface{}, error)
}

// Options control compilation defaults and the output shape.
type Options struct {
	// Produce keyed ordereddict.Dict records instead of Record
	// objects.
	ReturnDict bool

	// Default integer byte order, OrderLittle or OrderBig.
	Order string

	// Default float byte order. Derived from Order when empty.
	FloatOrder string

	// Default string encoding.
	Encoding string

	// Render raw byte fields as lowercase hex strings.
	BytesToHex bool
}

func (self *Options) normalize() (*Options, error) {
	result := &Options{}
	if self != nil {
		*result = *self
	}

	switch result.Order {
	case "":
		result.Order = OrderLittle
	case OrderLittle, OrderBig:
	default:
		return nil, fmt.Errorf("%w: byte order %q", ProgramError, result.Order)
	}

	switch result.FloatOrder {
	case "":
		result.FloatOrder = result.Order
	case OrderLittle, OrderBig:
	default:
		return nil, fmt.Errorf("%w: float order %q",
			ProgramError, result.FloatOrder)
	}

	if result.Encoding == "" {
		result.Encoding = "utf-8"
	}

	return result, nil
}

// CompileStruct lowers a description into an immutable opcode
// program. The option defaults (byte order, encoding, hex rendering)
// are baked into the emitted opcodes so a program always parses the
// way it was compiled. Compiling an already compiled program returns
// it unchanged.
func CompileStruct(defn interface{}, options *Options) (*Program, error) {
	switch t := defn.(type) {
	case *Program:
		return t, nil

	case *Description:
		opts, err := options.normalize()
		if err != nil {
			return nil, err
		}
		comp := &compiler{options: opts}
		return comp.compileStruct(t)

	default:
		return nil, fmt.Errorf("%w: can not compile %T", ProgramError, defn)
	}
}

// ParseStruct compiles the description if needed and runs it over the
// data. The result is a *Record, or an *ordereddict.Dict when
// options.ReturnDict is set. Data may be a byte slice, a seekable
// reader or a plain reader.
func ParseStruct(defn interface{}, data interface{}, options *Options) (interface{}, error) {
	program, err := CompileStruct(defn, options)
	if err != nil {
		return nil, err
	}

	stream, err := NewStream(data)
	if err != nil {
		return nil, err
	}

	ctx := NewContext(options != nil && options.ReturnDict)
	return program.execute(ctx, stream)
}
