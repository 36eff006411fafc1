package structreader

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
)

// A Stream is a seekable cursor over the input being parsed. Inputs
// are assumed fully materializable - plain readers are slurped up
// front so that Seek and Peek always work.
type Stream struct {
	reader io.ReadSeeker
	pos    int64
}

// NewStream wraps a byte buffer, a seekable reader or a plain reader
// into a stream. A *Stream input is passed through unchanged.
func NewStream(data interface{}) (*Stream, error) {
	switch t := data.(type) {
	case *Stream:
		return t, nil

	case []byte:
		return &Stream{reader: bytes.NewReader(t)}, nil

	case string:
		return &Stream{reader: bytes.NewReader([]byte(t))}, nil

	case io.ReadSeeker:
		pos, err := t.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		return &Stream{reader: t, pos: pos}, nil

	case io.Reader:
		buf, err := ioutil.ReadAll(t)
		if err != nil {
			return nil, err
		}
		return &Stream{reader: bytes.NewReader(buf)}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported input %T", ProgramError, data)
	}
}

// Read consumes exactly n bytes.
func (self *Stream) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %v", InvalidLengthError, n)
	}

	buf := make([]byte, n)
	_, err := io.ReadFull(self.reader, buf)
	if err != nil {
		return nil, UnexpectedEndError
	}
	self.pos += int64(n)
	return buf, nil
}

// Peek returns the next n bytes without moving the cursor.
func (self *Stream) Peek(n int) ([]byte, error) {
	pos := self.pos
	buf, err := self.Read(n)
	if err != nil {
		return nil, err
	}

	err = self.Seek(pos, io.SeekStart)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Tell reports the current offset from the origin.
func (self *Stream) Tell() int64 {
	return self.pos
}

// Seek moves the cursor. Whence follows the io.Seek* conventions:
// 0 from the origin, 1 relative to the cursor, 2 from the end. The
// cursor may land past the end of the input - the next Read will
// report UnexpectedEndError.
func (self *Stream) Seek(offset int64, whence int) error {
	if whence < io.SeekStart || whence > io.SeekEnd {
		return fmt.Errorf("%w: whence %v", InvalidSeekError, whence)
	}

	if whence == io.SeekStart && offset < 0 {
		return fmt.Errorf("%w: offset %v", InvalidSeekError, offset)
	}

	pos, err := self.reader.Seek(offset, whence)
	if err != nil || pos < 0 {
		return fmt.Errorf("%w: offset %v whence %v",
			InvalidSeekError, offset, whence)
	}
	self.pos = pos
	return nil
}
