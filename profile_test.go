package structreader

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/Velocidex/ordereddict"
	assert "github.com/stretchr/testify/assert"
)

func TestProfileDefinitions(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	profile.Scope().SetLogger(log.New(os.Stderr, " ", 0))

	definition := `
[
  ["Header", [
     ["magic", "bytes", {"length": 2, "hex": true}],
     ["count", "uint8"],
     ["items", "list", {"type": "Entry", "count": "x=>x.count"}],
     ["total", "value", {"value": "x=>x.count"}]
  ]],

  ["Entry", [
     ["tag", "uint8"],
     ["body", "match", {"selector": "x=>x.tag", "choices": ["uint16", "uint32be"]}]
  ]]
]
`
	err := profile.ParseStructDefinitions(definition)
	assert.NoError(t, err)

	data := []byte{
		0xCA, 0xFE, 0x02,
		0x00, 0x34, 0x12,
		0x01, 0x00, 0x00, 0x00, 0x2A,
	}

	obj, err := profile.Parse("Header", data, nil)
	assert.NoError(t, err)

	record := obj.(*Record)
	magic, _ := record.Get("magic")
	assert.Equal(t, "cafe", magic)

	count, _ := record.Get("count")
	assert.Equal(t, uint64(2), count)

	items, _ := record.Get("items")
	list := items.([]interface{})
	assert.Equal(t, 2, len(list))

	body, _ := list[0].(*Record).Get("body")
	assert.Equal(t, uint64(0x1234), body)

	body, _ = list[1].(*Record).Get("body")
	assert.Equal(t, uint64(42), body)

	total, _ := record.Get("total")
	total_int, ok := to_int64(total)
	assert.True(t, ok)
	assert.Equal(t, int64(2), total_int)
}

func TestProfileNestedReferences(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	// Lambdas traverse nested records through the associative
	// protocol.
	definition := `
[
  ["Outer", [
     ["hdr", "Inner"],
     ["body", "bytes", {"length": "x=>x.hdr.len"}]
  ]],

  ["Inner", [
     ["len", "uint8"]
  ]]
]
`
	err := profile.ParseStructDefinitions(definition)
	assert.NoError(t, err)

	obj, err := profile.Parse("Outer", []byte{0x03, 0x61, 0x62, 0x63}, nil)
	assert.NoError(t, err)

	body, _ := obj.(*Record).Get("body")
	assert.Equal(t, []byte("abc"), body)
}

func TestProfileDecoratedReaders(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	definition := `
[
  ["Packet", [
     ["kind", "enum", {"type": "uint8", "choices": {"1": "ping", "2": "pong"}}],
     ["flagset", "flags", {"type": "uint8", "bitmap": {"ack": 0, "syn": 2}}],
     ["ver", "bitfield", {"type": "uint8", "start_bit": 4, "end_bit": 8}]
  ]]
]
`
	err := profile.ParseStructDefinitions(definition)
	assert.NoError(t, err)

	obj, err := profile.Parse("Packet", []byte{0x02, 0x05, 0x35}, nil)
	assert.NoError(t, err)

	record := obj.(*Record)
	kind, _ := record.Get("kind")
	assert.Equal(t, "pong", kind)

	flagset, _ := record.Get("flagset")
	assert.Equal(t, []string{"ack", "syn"}, flagset)

	ver, _ := record.Get("ver")
	assert.Equal(t, uint64(3), ver)
}

func TestProfileSeekAndPeek(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	definition := `
[
  ["Tail", [
     ["start", "peek", {"type": "uint8"}],
     ["skip", "seek", {"offset": 4, "whence": 0}],
     ["last", "uint8"]
  ]]
]
`
	err := profile.ParseStructDefinitions(definition)
	assert.NoError(t, err)

	obj, err := profile.Parse("Tail",
		[]byte{0xAA, 0x00, 0x00, 0x00, 0x7F}, nil)
	assert.NoError(t, err)

	record := obj.(*Record)
	start, _ := record.Get("start")
	assert.Equal(t, uint64(0xAA), start)

	last, _ := record.Get("last")
	assert.Equal(t, uint64(0x7F), last)

	// The seek slot is anonymous.
	_, pres := record.Get("skip")
	assert.False(t, pres)
}

func TestProfileJSONDefinitions(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	definition := `[["Pair", [["a", "uint8"], ["b", "uint8"]]]]`

	var definitions []*StructDefinition
	err := json.Unmarshal([]byte(definition), &definitions)
	assert.NoError(t, err)

	err = profile.AddStructs(definitions)
	assert.NoError(t, err)

	obj, err := profile.Parse("Pair", []byte{0x01, 0x02}, nil)
	assert.NoError(t, err)

	b, _ := obj.(*Record).Get("b")
	assert.Equal(t, uint64(2), b)
}

func TestProfileDebugLogging(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	var buf bytes.Buffer
	profile.Scope().SetLogger(log.New(&buf, "", 0))
	profile.Scope().AppendVars(ordereddict.NewDict().
		Set("DEBUG_STRUCTREADER", 1))

	err := profile.ParseStructDefinitions(`
[
  ["Pair", [["a", "uint8"], ["b", "uint8"]]]
]
`)
	assert.NoError(t, err)

	obj, err := profile.Parse("Pair", []byte{0x01, 0x02}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, obj)

	// Both the parse announcement and the spew dump of the result
	// went through the scope logger.
	assert.Contains(t, buf.String(), "Parsing Pair")
	assert.Contains(t, buf.String(), "Parsed Pair")
}

func TestProfileErrors(t *testing.T) {
	profile := NewProfile()
	AddModel(profile)

	_, err := profile.Parse("Unknown", []byte{}, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, NotFoundError))

	// Cyclic struct references are rejected.
	definition := `
[
  ["A", [["x", "B"]]],
  ["B", [["y", "A"]]]
]
`
	err = profile.ParseStructDefinitions(definition)
	assert.NoError(t, err)

	_, err = profile.Compile("A", nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ProgramError))

	// Unexpected field options are reported.
	profile = NewProfile()
	AddModel(profile)
	err = profile.ParseStructDefinitions(`
[
  ["S", [["s", "string", {"length": 1, "frobnicate": true}]]]
]
`)
	assert.NoError(t, err)

	_, err = profile.Compile("S", nil)
	assert.Error(t, err)
}
