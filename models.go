//  Every profile contains basic builtin types that make it easier to
//  describe common structs. The model is a mapping between the
//  generic names of types and the corresponding spec builders.

package structreader

import (
	"fmt"
	"strconv"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/vfilter"
)

func AddModel(profile *Profile) {
	profile.types["uint8"] = scalarBuilder(UInt(8))
	profile.types["uint16"] = scalarBuilder(UInt(16))
	profile.types["uint32"] = scalarBuilder(UInt(32))
	profile.types["uint64"] = scalarBuilder(UInt(64))

	profile.types["uint8be"] = scalarBuilder(UIntBE(8))
	profile.types["uint16be"] = scalarBuilder(UIntBE(16))
	profile.types["uint32be"] = scalarBuilder(UIntBE(32))
	profile.types["uint64be"] = scalarBuilder(UIntBE(64))

	profile.types["int8"] = scalarBuilder(Int(8))
	profile.types["int16"] = scalarBuilder(Int(16))
	profile.types["int32"] = scalarBuilder(Int(32))
	profile.types["int64"] = scalarBuilder(Int(64))

	profile.types["int8be"] = scalarBuilder(IntBE(8))
	profile.types["int16be"] = scalarBuilder(IntBE(16))
	profile.types["int32be"] = scalarBuilder(IntBE(32))
	profile.types["int64be"] = scalarBuilder(IntBE(64))

	profile.types["float32"] = scalarBuilder(Float(32))
	profile.types["float64"] = scalarBuilder(Float(64))
	profile.types["float32be"] = scalarBuilder(FloatBE(32))
	profile.types["float64be"] = scalarBuilder(FloatBE(64))

	profile.types["uvarint"] = scalarBuilder(Uvarint)
	profile.types["bool"] = scalarBuilder(Bool)
	profile.types["pos"] = scalarBuilder(Pos)

	profile.types["string"] = stringBuilder
	profile.types["bytes"] = bytesBuilder
	profile.types["list"] = listBuilder
	profile.types["match"] = matchBuilder
	profile.types["peek"] = peekBuilder
	profile.types["seek"] = seekBuilder
	profile.types["enum"] = enumBuilder
	profile.types["flags"] = flagsBuilder
	profile.types["bitfield"] = bitfieldBuilder
	profile.types["value"] = valueBuilder

	// Aliases
	profile.types["byte"] = profile.types["uint8"]
	profile.types["char"] = profile.types["int8"]
	profile.types["unsigned char"] = profile.types["uint8"]
	profile.types["unsigned short"] = profile.types["uint16"]
	profile.types["unsigned int"] = profile.types["uint32"]
	profile.types["unsigned long long"] = profile.types["uint64"]
}

func scalarBuilder(spec *TypeSpec) specBuilder {
	return func(profile *Profile, options *ordereddict.Dict,
		visiting map[string]bool) (interface{}, error) {
		return spec, nil
	}
}

// lengthValue folds the literal/lambda pair produced by ParseOptions
// into a single length source.
func lengthValue(profile *Profile, literal *int64,
	expression *vfilter.Lambda) (interface{}, error) {

	if expression != nil {
		return profile.lambdaSpec(expression), nil
	}
	if literal != nil {
		return *literal, nil
	}
	return nil, fmt.Errorf("%w: a length is required", ProgramError)
}

type stringFieldOptions struct {
	Length           *int64 `structreader:"optional,lambda=LengthExpression,field=length,doc=Length of the string in bytes (can be a lambda)"`
	LengthExpression *vfilter.Lambda
	Encoding         string `structreader:"optional,field=encoding,doc=The encoding used to decode the string"`
}

func stringBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &stringFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("string: %w", err)
	}

	length, err := lengthValue(profile, opts.Length, opts.LengthExpression)
	if err != nil {
		return nil, fmt.Errorf("string: %w", err)
	}

	result := Str(length)
	result.encoding = opts.Encoding
	return result, nil
}

type bytesFieldOptions struct {
	Length           *int64 `structreader:"optional,lambda=LengthExpression,field=length,doc=Number of bytes to read (can be a lambda)"`
	LengthExpression *vfilter.Lambda
	Hex              bool `structreader:"optional,field=hex,doc=Render the value as a lowercase hex string"`
}

func bytesBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &bytesFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("bytes: %w", err)
	}

	length, err := lengthValue(profile, opts.Length, opts.LengthExpression)
	if err != nil {
		return nil, fmt.Errorf("bytes: %w", err)
	}

	result := Bytes(length)
	if opts.Hex {
		result.hex = &opts.Hex
	}
	return result, nil
}

type listFieldOptions struct {
	Type            string            `structreader:"required,field=type,doc=The type of the list elements"`
	TypeOptions     *ordereddict.Dict `structreader:"optional,field=type_options,doc=Any additional options required to build the element type"`
	Count           *int64            `structreader:"optional,lambda=CountExpression,field=count,doc=Number of elements (can be a lambda)"`
	CountExpression *vfilter.Lambda
}

func listBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &listFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	elem, err := profile.resolveSpec(opts.Type, opts.TypeOptions, visiting)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	count, err := lengthValue(profile, opts.Count, opts.CountExpression)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return List(count, elem), nil
}

// A match takes a lambda selector and a positional list of branch
// type names: the selector value indexes the list.
func matchBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	if options == nil {
		return nil, fmt.Errorf("match: %w: options are required", ProgramError)
	}

	expression, pres := options.GetString("selector")
	if !pres {
		return nil, fmt.Errorf("match: %w: a lambda selector is required",
			ProgramError)
	}

	selector, err := vfilter.ParseLambda(expression)
	if err != nil {
		return nil, fmt.Errorf("match: selector %q: %v", expression, err)
	}

	choices, pres := options.Get("choices")
	if !pres {
		return nil, fmt.Errorf("match: %w: choices are required", ProgramError)
	}

	choice_list, ok := choices.([]interface{})
	if !ok {
		return nil, fmt.Errorf(
			"match: %w: choices should be a list of type names", ProgramError)
	}

	branches := make([]interface{}, 0, len(choice_list))
	for _, choice := range choice_list {
		type_name, ok := choice.(string)
		if !ok {
			return nil, fmt.Errorf(
				"match: %w: choices should be a list of type names",
				ProgramError)
		}

		branch, err := profile.resolveSpec(type_name, nil, visiting)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		branches = append(branches, branch)
	}

	return Match(profile.lambdaSpec(selector), branches...), nil
}

type peekFieldOptions struct {
	Type        string            `structreader:"required,field=type,doc=The type to read ahead"`
	TypeOptions *ordereddict.Dict `structreader:"optional,field=type_options,doc=Any additional options required to build the type"`
}

func peekBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &peekFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("peek: %w", err)
	}

	inner, err := profile.resolveSpec(opts.Type, opts.TypeOptions, visiting)
	if err != nil {
		return nil, fmt.Errorf("peek: %w", err)
	}

	return Peek(inner), nil
}

type seekFieldOptions struct {
	Offset           *int64 `structreader:"optional,lambda=OffsetExpression,field=offset,doc=Where to move the cursor (can be a lambda)"`
	OffsetExpression *vfilter.Lambda
	Whence           int64 `structreader:"optional,field=whence,doc=0 absolute 1 relative 2 from the end"`
}

func seekBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &seekFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	offset, err := lengthValue(profile, opts.Offset, opts.OffsetExpression)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	return Seek(offset, int(opts.Whence)), nil
}

type enumFieldOptions struct {
	Type        string            `structreader:"required,field=type,doc=The underlying integer type"`
	TypeOptions *ordereddict.Dict `structreader:"optional,field=type_options,doc=Any additional options required to build the type"`
	Choices     *ordereddict.Dict `structreader:"required,field=choices,doc=A mapping between numbers and names"`
}

func enumBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &enumFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("enum: %w", err)
	}

	inner, err := profile.resolveSpec(opts.Type, opts.TypeOptions, visiting)
	if err != nil {
		return nil, fmt.Errorf("enum: %w", err)
	}

	mapping := make(map[int64]string)
	for _, k := range opts.Choices.Keys() {
		v, _ := opts.Choices.Get(k)

		i, err := strconv.ParseInt(k, 0, 64)
		if err != nil {
			return nil, fmt.Errorf(
				"enum: %w: choices should map numbers to names (not %v)",
				ProgramError, k)
		}

		v_str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf(
				"enum: %w: choices should map numbers to names", ProgramError)
		}

		mapping[i] = v_str
	}

	return Enum(inner, mapping), nil
}

type flagsFieldOptions struct {
	Type        string            `structreader:"required,field=type,doc=The underlying integer type"`
	TypeOptions *ordereddict.Dict `structreader:"optional,field=type_options,doc=Any additional options required to build the type"`
	Bitmap      *ordereddict.Dict `structreader:"required,field=bitmap,doc=A mapping between names and bit numbers"`
}

func flagsBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &flagsFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	inner, err := profile.resolveSpec(opts.Type, opts.TypeOptions, visiting)
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	bitmap := make(map[int64]string)
	for _, name := range opts.Bitmap.Keys() {
		bit_any, _ := opts.Bitmap.Get(name)
		bit, ok := to_int64(bit_any)
		if !ok {
			return nil, fmt.Errorf(
				"flags: %w: bitmap should map names to bit numbers",
				ProgramError)
		}
		bitmap[bit] = name
	}

	return Flags(inner, bitmap), nil
}

type bitfieldFieldOptions struct {
	Type        string            `structreader:"required,field=type,doc=The underlying integer type"`
	TypeOptions *ordereddict.Dict `structreader:"optional,field=type_options,doc=Any additional options required to build the type"`
	StartBit    int64             `structreader:"optional,field=start_bit,doc=First bit of the extracted range"`
	EndBit      int64             `structreader:"required,field=end_bit,doc=One past the last bit of the extracted range"`
}

func bitfieldBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	opts := &bitfieldFieldOptions{}
	err := ParseOptions(options, opts)
	if err != nil {
		return nil, fmt.Errorf("bitfield: %w", err)
	}

	inner, err := profile.resolveSpec(opts.Type, opts.TypeOptions, visiting)
	if err != nil {
		return nil, fmt.Errorf("bitfield: %w", err)
	}

	return Bitfield(inner, opts.StartBit, opts.EndBit), nil
}

// A value field produces a constant, or evaluates a lambda over the
// fields parsed so far. It never touches the stream.
func valueBuilder(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	if options == nil {
		return nil, fmt.Errorf("value: %w: a value is required", ProgramError)
	}

	value, pres := options.Get("value")
	if !pres || IsNil(value) {
		return nil, fmt.Errorf("value: %w: a value is required", ProgramError)
	}

	if isFieldLambda(value) {
		expression, err := vfilter.ParseLambda(value.(string))
		if err != nil {
			return nil, fmt.Errorf("value: %v", err)
		}
		return profile.lambdaSpec(expression), nil
	}

	return &TypeSpec{kind: kindConst, value: value}, nil
}
