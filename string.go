package structreader

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// A StringOp reads a length decoded string. The length source is
// evaluated first, then exactly that many bytes are consumed and
// decoded. Decode failure is fatal.
type StringOp struct {
	length   Opcode
	encoding string
	decoder  func(buf []byte) (string, error)
}

func (self *StringOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	length, err := evalCount(self.length, ctx, stream)
	if err != nil {
		return nil, err
	}

	buf, err := stream.Read(int(length))
	if err != nil {
		return nil, err
	}

	result, err := self.decoder(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", DecodeError, self.encoding, err)
	}
	return result, nil
}

func NewStringOp(length Opcode, encoding string) (*StringOp, error) {
	decoder, err := lookupDecoder(encoding)
	if err != nil {
		return nil, err
	}
	return &StringOp{
		length:   length,
		encoding: encoding,
		decoder:  decoder,
	}, nil
}

func lookupDecoder(encoding string) (func(buf []byte) (string, error), error) {
	switch strings.ToLower(encoding) {
	case "utf-8", "utf8":
		return decodeUTF8, nil

	case "ascii":
		return decodeASCII, nil

	case "latin-1", "latin1", "iso-8859-1":
		return decodeCharmap(charmap.ISO8859_1), nil

	case "utf-16", "utf16", "utf-16le", "utf16le":
		return decodeUTF16(unicode.LittleEndian), nil

	case "utf-16be", "utf16be":
		return decodeUTF16(unicode.BigEndian), nil

	default:
		return nil, fmt.Errorf("%w: unknown encoding %v",
			ProgramError, encoding)
	}
}

func decodeUTF8(buf []byte) (string, error) {
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("invalid utf-8 sequence")
	}
	return string(buf), nil
}

func decodeASCII(buf []byte) (string, error) {
	for i, b := range buf {
		if b > 0x7f {
			return "", fmt.Errorf("byte %#x at %v is not ascii", b, i)
		}
	}
	return string(buf), nil
}

func decodeCharmap(cm *charmap.Charmap) func(buf []byte) (string, error) {
	return func(buf []byte) (string, error) {
		result, err := cm.NewDecoder().Bytes(buf)
		if err != nil {
			return "", err
		}
		return string(result), nil
	}
}

func decodeUTF16(endianness unicode.Endianness) func(buf []byte) (string, error) {
	return func(buf []byte) (string, error) {
		if len(buf)%2 != 0 {
			return "", fmt.Errorf("utf-16 input of odd length %v", len(buf))
		}
		result, err := unicode.UTF16(endianness, unicode.IgnoreBOM).
			NewDecoder().Bytes(buf)
		if err != nil {
			return "", err
		}
		return string(result), nil
	}
}

// A BytesOp reads raw bytes. When hex rendering was selected at
// compile time the value is a lowercase hex string instead of a byte
// slice.
type BytesOp struct {
	length Opcode
	hex    bool
}

func (self *BytesOp) Eval(ctx *Context, stream *Stream) (interface{}, error) {
	length, err := evalCount(self.length, ctx, stream)
	if err != nil {
		return nil, err
	}

	buf, err := stream.Read(int(length))
	if err != nil {
		return nil, err
	}

	if self.hex {
		return hex.EncodeToString(buf), nil
	}
	return buf, nil
}
