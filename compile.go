package structreader

import (
	"fmt"
	"strings"
)

const (
	OrderLittle = "little"
	OrderBig    = "big"
)

// The compiler lowers a description into a program in a single pass
// over the declared fields. Defaults from the options are baked into
// the emitted opcodes.
type compiler struct {
	options *Options
}

func (self *compiler) compileStruct(desc *Description) (*Program, error) {
	program := &Program{
		names:      make([]string, 0, len(desc.names)),
		name_index: make(map[string]int),
	}

	for i, name := range desc.names {
		spec := desc.specs[i]

		op, err := self.compileSpec(spec, program)
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", name, err)
		}

		// Seek executes for its side effect only - the name, if
		// any, is dropped and the slot can not be referenced.
		if isAnonymous(spec) {
			name = ""
		}

		if name != "" {
			_, pres := program.name_index[name]
			if pres {
				return nil, fmt.Errorf("%w: duplicate field %v",
					ProgramError, name)
			}
			program.name_index[name] = i
		}

		program.ops = append(program.ops, op)
		program.names = append(program.names, name)
	}

	return program, nil
}

// compileSpec lowers one spec value. Sources (lengths, counts,
// discriminants, offsets, args) reuse the same lowering: an integer
// becomes a literal, a Var becomes a positional back reference and
// anything else an inline opcode.
func (self *compiler) compileSpec(spec interface{}, enclosing *Program) (Opcode, error) {
	switch t := spec.(type) {
	case nil:
		return nil, fmt.Errorf("%w: missing spec", ProgramError)

	case *Program:
		return &StructOp{program: t}, nil

	case *Description:
		sub, err := self.compileStruct(t)
		if err != nil {
			return nil, err
		}
		return &StructOp{program: sub}, nil

	case int:
		return &LiteralOp{value: int64(t)}, nil

	case int64:
		return &LiteralOp{value: t}, nil

	case uint64:
		return &LiteralOp{value: t}, nil

	case string:
		return &LiteralOp{value: t}, nil

	case *TypeSpec:
		return self.compileType(t, enclosing)

	default:
		return nil, fmt.Errorf("%w: unsupported spec %T", ProgramError, spec)
	}
}

func (self *compiler) compileType(spec *TypeSpec, enclosing *Program) (Opcode, error) {
	switch spec.kind {
	case kindVar:
		return self.compileRef(spec.name, enclosing)

	case kindInt:
		if spec.bits <= 0 || spec.bits%8 != 0 || spec.bits > 64 {
			return nil, fmt.Errorf("%w: integer width %v",
				ProgramError, spec.bits)
		}
		size := spec.bits / 8
		big_endian := self.resolveOrder(spec.order, self.options.Order)
		return NewIntOp(intTypeName(spec.bits, spec.signed, big_endian),
			size, intConverter(size, spec.signed, big_endian)), nil

	case kindFloat:
		if spec.bits != 32 && spec.bits != 64 {
			return nil, fmt.Errorf("%w: float width %v",
				ProgramError, spec.bits)
		}
		big_endian := self.resolveOrder(spec.order, self.options.FloatOrder)
		return NewFloatOp(spec.bits/8, big_endian), nil

	case kindUvarint:
		return &UvarintOp{}, nil

	case kindBool:
		return &BoolOp{}, nil

	case kindPos:
		return &PosOp{}, nil

	case kindStr:
		length, err := self.compileSpec(spec.length, enclosing)
		if err != nil {
			return nil, err
		}
		encoding := spec.encoding
		if encoding == "" {
			encoding = self.options.Encoding
		}
		op, err := NewStringOp(length, encoding)
		if err != nil {
			return nil, err
		}
		return op, nil

	case kindBytes:
		length, err := self.compileSpec(spec.length, enclosing)
		if err != nil {
			return nil, err
		}
		hex := self.options.BytesToHex
		if spec.hex != nil {
			hex = *spec.hex
		}
		return &BytesOp{length: length, hex: hex}, nil

	case kindList:
		count, err := self.compileSpec(spec.count, enclosing)
		if err != nil {
			return nil, err
		}
		elem, err := self.compileSpec(spec.elem, enclosing)
		if err != nil {
			return nil, err
		}
		return &ListOp{count: count, elem: elem}, nil

	case kindMatch:
		cond, err := self.compileSpec(spec.cond, enclosing)
		if err != nil {
			return nil, err
		}
		if len(spec.branches) == 0 {
			return nil, fmt.Errorf("%w: match with no branches", ProgramError)
		}
		branches := make([]Opcode, 0, len(spec.branches))
		for _, branch := range spec.branches {
			op, err := self.compileSpec(branch, enclosing)
			if err != nil {
				return nil, err
			}
			branches = append(branches, op)
		}
		return &MatchOp{cond: cond, branches: branches}, nil

	case kindPeek:
		inner, err := self.compileSpec(spec.inner, enclosing)
		if err != nil {
			return nil, err
		}
		return &PeekOp{inner: inner}, nil

	case kindSeek:
		if spec.whence < 0 || spec.whence > 2 {
			return nil, fmt.Errorf("%w: seek whence %v",
				ProgramError, spec.whence)
		}
		offset, err := self.compileSpec(spec.offset, enclosing)
		if err != nil {
			return nil, err
		}
		return &SeekOp{offset: offset, whence: spec.whence}, nil

	case kindFunc:
		if spec.callback == nil {
			return nil, fmt.Errorf("%w: func without a callback", ProgramError)
		}
		args, err := self.compileGroup(spec.args, enclosing)
		if err != nil {
			return nil, err
		}
		return &FuncOp{callback: spec.callback, args: args}, nil

	case kindGroup:
		group, err := self.compileGroup(spec.args, enclosing)
		if err != nil {
			return nil, err
		}
		return group, nil

	case kindConst:
		return &LiteralOp{value: spec.value}, nil

	case kindEnum:
		inner, err := self.compileSpec(spec.inner, enclosing)
		if err != nil {
			return nil, err
		}
		return &EnumOp{inner: inner, choices: spec.choices}, nil

	case kindFlags:
		inner, err := self.compileSpec(spec.inner, enclosing)
		if err != nil {
			return nil, err
		}
		op, err := NewFlagsOp(inner, spec.choices)
		if err != nil {
			return nil, err
		}
		return op, nil

	case kindBitfield:
		inner, err := self.compileSpec(spec.inner, enclosing)
		if err != nil {
			return nil, err
		}
		op, err := NewBitfieldOp(inner, spec.start_bit, spec.end_bit)
		if err != nil {
			return nil, err
		}
		return op, nil

	case kindLambda:
		if spec.expression == nil || spec.scope == nil {
			return nil, fmt.Errorf("%w: lambda without expression", ProgramError)
		}
		// Snapshot the names declared so far - the lambda sees
		// exactly the fields parsed before it.
		names := append([]string{}, enclosing.names...)
		return &LambdaOp{
			expression: spec.expression,
			scope:      spec.scope,
			names:      names,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown spec kind %v",
			ProgramError, spec.kind)
	}
}

// compileRef resolves a symbolic reference into a positional back
// reference. Only names declared strictly earlier at the same nesting
// level resolve; a dotted tail descends into the referenced value at
// run time.
func (self *compiler) compileRef(name string, enclosing *Program) (Opcode, error) {
	head := name
	var path []string

	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		head = name[:idx]
		path = strings.Split(name[idx+1:], ".")
	}

	index, pres := enclosing.name_index[head]
	if !pres {
		return nil, fmt.Errorf("%w: %v", UnresolvedReferenceError, name)
	}

	return &RefOp{name: name, index: index, path: path}, nil
}

func (self *compiler) compileGroup(args []interface{}, enclosing *Program) (*GroupOp, error) {
	members := make([]Opcode, 0, len(args))
	for _, arg := range args {
		op, err := self.compileSpec(arg, enclosing)
		if err != nil {
			return nil, err
		}
		members = append(members, op)
	}
	return &GroupOp{members: members}, nil
}

func (self *compiler) resolveOrder(order, fallback string) bool {
	if order == "" {
		order = fallback
	}
	return order == OrderBig
}

func isAnonymous(spec interface{}) bool {
	t, ok := spec.(*TypeSpec)
	return ok && t.kind == kindSeek
}

func intTypeName(bits int, signed bool, big_endian bool) string {
	name := "uint"
	if signed {
		name = "int"
	}
	name = fmt.Sprintf("%s%d", name, bits)
	if big_endian {
		name += "be"
	}
	return name
}
