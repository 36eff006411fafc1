package structreader

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. All of them are fatal for the
// parse in which they occur - nothing is recovered internally.
var (
	UnexpectedEndError       = errors.New("unexpected end of stream")
	InvalidLengthError       = errors.New("invalid length")
	UnresolvedReferenceError = errors.New("unresolved field reference")
	NoMatchError             = errors.New("match discriminant out of range")
	DecodeError              = errors.New("string decode error")
	CallbackError            = errors.New("callback error")
	InvalidSeekError         = errors.New("invalid seek")
	MalformedVarintError     = errors.New("malformed varint")
	ProgramError             = errors.New("malformed program")
	NotFoundError            = errors.New("type not found")
)

// A FieldError decorates an engine error with the name of the field
// being parsed and the stream offset at which parsing stopped.
type FieldError struct {
	Field  string
	Offset int64
	Err    error
}

func (self *FieldError) Error() string {
	if self.Field == "" {
		return fmt.Sprintf("at offset %d: %v", self.Offset, self.Err)
	}
	return fmt.Sprintf("field %q at offset %d: %v",
		self.Field, self.Offset, self.Err)
}

func (self *FieldError) Unwrap() error {
	return self.Err
}
