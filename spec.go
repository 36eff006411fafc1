package structreader

import (
	"www.velocidex.com/golang/vfilter"
)

// Spec variant tags.
const (
	kindInt = iota + 1
	kindFloat
	kindUvarint
	kindStr
	kindBytes
	kindList
	kindConst
	kindVar
	kindMatch
	kindFunc
	kindGroup
	kindSeek
	kindPos
	kindPeek
	kindBool
	kindEnum
	kindFlags
	kindBitfield
	kindLambda
)

// A TypeSpec describes a single field reader before compilation. It
// is a tagged variant - only the fields relevant to its kind are
// set. Specs are built through the constructor functions below (or by
// the profile front end) and consumed by the compiler.
type TypeSpec struct {
	kind int

	// kindInt / kindFloat
	bits   int
	signed bool
	order  string

	// kindStr / kindBytes. A length is a nested spec value: an
	// integer literal, a Var reference or an inline reader.
	length   interface{}
	encoding string
	hex      *bool

	// kindList
	count interface{}
	elem  interface{}

	// kindMatch
	cond     interface{}
	branches []interface{}

	// kindSeek
	offset interface{}
	whence int

	// kindFunc / kindGroup
	callback Callback
	args     []interface{}

	// kindVar
	name string

	// kindConst
	value interface{}

	// kindPeek / kindEnum / kindFlags / kindBitfield
	inner interface{}

	// kindEnum / kindFlags
	choices map[int64]string

	// kindBitfield
	start_bit int64
	end_bit   int64

	// kindLambda
	expression *vfilter.Lambda
	scope      vfilter.Scope
}

// A Description is an ordered sequence of named field specs. Field
// names must be unique within a description; a Seek field is
// anonymous and its name is dropped.
type Description struct {
	names []string
	specs []interface{}
}

func NewDescription() *Description {
	return &Description{}
}

// AddField appends a named field. Fields are compiled and executed in
// the order they were added.
func (self *Description) AddField(name string, spec interface{}) *Description {
	self.names = append(self.names, name)
	self.specs = append(self.specs, spec)
	return self
}

// Int reads a signed two's complement integer of the given bit width
// in the default byte order. The width must be a positive multiple of
// 8 up to 64.
func Int(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits, signed: true}
}

func IntBE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits, signed: true, order: OrderBig}
}

func IntLE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits, signed: true, order: OrderLittle}
}

// UInt reads an unsigned integer of the given bit width in the
// default byte order.
func UInt(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits}
}

func UIntBE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits, order: OrderBig}
}

func UIntLE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindInt, bits: bits, order: OrderLittle}
}

// Float reads an IEEE 754 float of 32 or 64 bits in the default float
// order.
func Float(bits int) *TypeSpec {
	return &TypeSpec{kind: kindFloat, bits: bits}
}

func FloatBE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindFloat, bits: bits, order: OrderBig}
}

func FloatLE(bits int) *TypeSpec {
	return &TypeSpec{kind: kindFloat, bits: bits, order: OrderLittle}
}

// Str reads length bytes and decodes them with the default encoding.
func Str(length interface{}) *TypeSpec {
	return &TypeSpec{kind: kindStr, length: length}
}

// StrEnc reads length bytes and decodes them with an explicit
// encoding (utf-8, utf-16le, utf-16be, latin-1 or ascii).
func StrEnc(length interface{}, encoding string) *TypeSpec {
	return &TypeSpec{kind: kindStr, length: length, encoding: encoding}
}

// Bytes reads length raw bytes. The value is a byte slice, or a
// lowercase hex string when hex rendering is selected.
func Bytes(length interface{}) *TypeSpec {
	return &TypeSpec{kind: kindBytes, length: length}
}

// List reads count elements of the elem spec. The elements are
// executed against the enclosing frame, so they may reference fields
// declared before the list.
func List(count interface{}, elem interface{}) *TypeSpec {
	return &TypeSpec{kind: kindList, count: count, elem: elem}
}

// Match evaluates the discriminant and executes the branch it
// selects. Branches are positional: discriminant 0 selects the first
// branch, 1 the second and so on. A discriminant outside the table is
// a NoMatchError.
func Match(cond interface{}, branches ...interface{}) *TypeSpec {
	return &TypeSpec{kind: kindMatch, cond: cond, branches: branches}
}

// Func evaluates each arg spec in order and invokes the callback with
// the results. The return value is captured as the field value.
func Func(callback Callback, args ...interface{}) *TypeSpec {
	return &TypeSpec{kind: kindFunc, callback: callback, args: args}
}

// Group captures a positional tuple of its evaluated arg specs.
func Group(args ...interface{}) *TypeSpec {
	return &TypeSpec{kind: kindGroup, args: args}
}

// Seek moves the cursor without producing a value. Whence is 0 for
// absolute, 1 for relative and 2 for end relative positioning.
func Seek(offset interface{}, whence int) *TypeSpec {
	return &TypeSpec{kind: kindSeek, offset: offset, whence: whence}
}

// Peek executes the inner spec and rewinds the cursor to where it
// was. The inner value is captured.
func Peek(inner interface{}) *TypeSpec {
	return &TypeSpec{kind: kindPeek, inner: inner}
}

// Var references a field declared strictly earlier at the same
// nesting level. A dotted name (e.g. "hdr.len") descends into nested
// records.
func Var(name string) *TypeSpec {
	return &TypeSpec{kind: kindVar, name: name}
}

// Enum maps the integer read by the inner spec to a symbolic name.
func Enum(inner interface{}, choices map[int64]string) *TypeSpec {
	return &TypeSpec{kind: kindEnum, inner: inner, choices: choices}
}

// Flags expands the bitmask read by the inner spec into the names of
// the set bits. The map is bit number to name.
func Flags(inner interface{}, bitmap map[int64]string) *TypeSpec {
	return &TypeSpec{kind: kindFlags, inner: inner, choices: bitmap}
}

// Bitfield extracts bits [start_bit, end_bit) from the integer read
// by the inner spec.
func Bitfield(inner interface{}, start_bit, end_bit int64) *TypeSpec {
	return &TypeSpec{
		kind:      kindBitfield,
		inner:     inner,
		start_bit: start_bit,
		end_bit:   end_bit,
	}
}

var (
	// Uvarint reads an unsigned LEB128 integer.
	Uvarint = &TypeSpec{kind: kindUvarint}

	// Bool reads a single byte; any non zero value is true.
	Bool = &TypeSpec{kind: kindBool}

	// Pos captures the current cursor position without reading.
	Pos = &TypeSpec{kind: kindPos}
)
