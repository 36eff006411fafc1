package structreader

import (
	"errors"

	"github.com/Velocidex/ordereddict"
)

// A Program is the compiled, immutable form of a structure
// description: a linear opcode sequence with a parallel name list.
// Position i in the opcode sequence corresponds to position i in the
// name list and to value index i of the frame it executes in.
// Programs are safe to share between concurrent parses.
type Program struct {
	ops        []Opcode
	names      []string
	name_index map[string]int
}

// NumFields reports the number of program slots, anonymous ones
// included.
func (self *Program) NumFields() int {
	return len(self.ops)
}

// execute runs every opcode in order against the current frame and
// materializes the frame as a result record.
func (self *Program) execute(ctx *Context, stream *Stream) (interface{}, error) {
	fr := ctx.current()

	for i, op := range self.ops {
		value, err := op.Eval(ctx, stream)
		if err != nil {
			return nil, self.annotate(i, stream, err)
		}
		fr.values = append(fr.values, value)
	}

	return self.materialize(ctx, fr), nil
}

// annotate attaches the failing field name and stream offset once -
// errors from nested programs already carry theirs.
func (self *Program) annotate(idx int, stream *Stream, err error) error {
	var field_err *FieldError
	if errors.As(err, &field_err) {
		return err
	}
	return &FieldError{
		Field:  self.names[idx],
		Offset: stream.Tell(),
		Err:    err,
	}
}

func (self *Program) materialize(ctx *Context, fr *frame) interface{} {
	if ctx.return_dict {
		result := ordereddict.NewDict()
		for i, name := range self.names {
			if name == "" {
				continue
			}
			result.Set(name, fr.values[i])
		}
		return result
	}

	return &Record{program: self, values: fr.values}
}

// A StructOp executes a compiled sub program in a fresh frame and
// captures the resulting record.
type StructOp struct {
	program *Program
}

func (self *StructOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	ctx.push()
	defer ctx.pop()

	return self.program.execute(ctx, stream)
}

// A Record is the attribute style result of parsing one structure. It
// preserves declaration order and is addressable by field name.
type Record struct {
	program *Program
	values  []interface{}
}

func (self *Record) Get(field string) (interface{}, bool) {
	idx, pres := self.program.name_index[field]
	if !pres {
		return nil, false
	}
	return self.values[idx], true
}

// Names returns the non anonymous field names in declaration order.
func (self *Record) Names() []string {
	result := make([]string, 0, len(self.program.names))
	for _, name := range self.program.names {
		if name == "" {
			continue
		}
		result = append(result, name)
	}
	return result
}

// Tuple returns the positional view of the record: the values of all
// non anonymous fields in declaration order.
func (self *Record) Tuple() []interface{} {
	result := make([]interface{}, 0, len(self.values))
	for i, name := range self.program.names {
		if name == "" {
			continue
		}
		result = append(result, self.values[i])
	}
	return result
}

func (self *Record) MarshalJSON() ([]byte, error) {
	result := ordereddict.NewDict()
	for i, name := range self.program.names {
		if name == "" {
			continue
		}
		result.Set(name, self.values[i])
	}
	return result.MarshalJSON()
}
