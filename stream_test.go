package structreader

import (
	"bytes"
	"errors"
	"io"
	"testing"

	assert "github.com/stretchr/testify/assert"
)

func TestStreamReadPeekTell(t *testing.T) {
	stream, err := NewStream([]byte{0x01, 0x02, 0x03, 0x04})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stream.Tell())

	buf, err := stream.Peek(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, buf)

	// Peek does not move the cursor.
	assert.Equal(t, int64(0), stream.Tell())

	buf, err = stream.Read(3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf)
	assert.Equal(t, int64(3), stream.Tell())

	// Reading more than remains is fatal.
	_, err = stream.Read(2)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, UnexpectedEndError))
}

func TestStreamSeek(t *testing.T) {
	stream, err := NewStream([]byte{0x01, 0x02, 0x03, 0x04})
	assert.NoError(t, err)

	err = stream.Seek(2, io.SeekStart)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stream.Tell())

	err = stream.Seek(1, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stream.Tell())

	err = stream.Seek(-2, io.SeekEnd)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stream.Tell())

	// Seeking to a negative absolute position is fatal.
	err = stream.Seek(-1, io.SeekStart)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, InvalidSeekError))

	err = stream.Seek(-10, io.SeekCurrent)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, InvalidSeekError))

	// Seeking past the end is allowed - the next read fails.
	err = stream.Seek(10, io.SeekStart)
	assert.NoError(t, err)
	_, err = stream.Read(1)
	assert.True(t, errors.Is(err, UnexpectedEndError))
}

func TestStreamInputs(t *testing.T) {
	// A plain reader is materialized up front.
	stream, err := NewStream(bytes.NewBuffer([]byte{0x01, 0x02}))
	assert.NoError(t, err)

	err = stream.Seek(1, io.SeekStart)
	assert.NoError(t, err)

	buf, err := stream.Read(1)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x02}, buf)

	// A seekable reader is used in place.
	stream, err = NewStream(bytes.NewReader([]byte{0x0A}))
	assert.NoError(t, err)
	buf, err = stream.Read(1)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0A}, buf)

	// Strings are byte buffers too.
	stream, err = NewStream("ab")
	assert.NoError(t, err)
	buf, err = stream.Read(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte("ab"), buf)

	_, err = NewStream(42)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ProgramError))
}
