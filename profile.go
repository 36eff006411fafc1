package structreader

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
	"github.com/Velocidex/yaml"
	"www.velocidex.com/golang/vfilter"
)

// A specBuilder turns a field option dict into a spec for the
// compiler. The visiting set tracks struct names currently being
// expanded so cyclic references are caught.
type specBuilder func(profile *Profile, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error)

// A Profile is a registry of named types: the builtin model installed
// by AddModel plus user struct definitions. Struct definitions may
// reference each other in any order; cycles are rejected.
type Profile struct {
	types   map[string]specBuilder
	structs map[string]*StructDefinition
	scope   vfilter.Scope
}

func NewProfile() *Profile {
	result := &Profile{
		types:   make(map[string]specBuilder),
		structs: make(map[string]*StructDefinition),
		scope:   MakeScope(),
	}

	return result
}

// Scope returns the scope profile lambdas are evaluated in. Callers
// may append variables or set a logger on it.
func (self *Profile) Scope() vfilter.Scope {
	return self.scope
}

func (self *Profile) AddType(type_name string, builder specBuilder) {
	self.types[type_name] = builder
}

func (self *Profile) AddStructs(definitions []*StructDefinition) error {
	for _, def := range definitions {
		if def.Name == "" {
			return fmt.Errorf("%w: struct without a name", ProgramError)
		}

		_, pres := self.types[def.Name]
		if pres {
			return fmt.Errorf("%w: struct %v shadows a builtin type",
				ProgramError, def.Name)
		}

		_, pres = self.structs[def.Name]
		if pres {
			return fmt.Errorf("%w: duplicate struct %v",
				ProgramError, def.Name)
		}

		self.structs[def.Name] = def
	}
	return nil
}

// Build the profile from definitions given in the definition
// language.
func (self *Profile) ParseStructDefinitions(definitions string) error {
	var struct_definitions []*StructDefinition

	err := yaml.Unmarshal([]byte(definitions), &struct_definitions)
	if err != nil {
		return err
	}

	return self.AddStructs(struct_definitions)
}

// Describe expands a named struct into a plain description suitable
// for CompileStruct.
func (self *Profile) Describe(type_name string) (*Description, error) {
	spec, err := self.resolveSpec(type_name, nil, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	desc, ok := spec.(*Description)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a struct type",
			ProgramError, type_name)
	}
	return desc, nil
}

func (self *Profile) Compile(type_name string, options *Options) (*Program, error) {
	desc, err := self.Describe(type_name)
	if err != nil {
		return nil, err
	}
	return CompileStruct(desc, options)
}

// Parse compiles the named struct and runs it over the data.
func (self *Profile) Parse(type_name string, data interface{},
	options *Options) (interface{}, error) {

	ScopeDebug(self.scope, "Parsing %v\n", type_name)

	program, err := self.Compile(type_name, options)
	if err != nil {
		return nil, err
	}

	result, err := ParseStruct(program, data, options)
	if err == nil && DebugEnabled(self.scope) {
		self.scope.Log("Parsed %v: %v", type_name, Dump(result))
	}
	return result, err
}

func (self *Profile) resolveSpec(type_name string, options *ordereddict.Dict,
	visiting map[string]bool) (interface{}, error) {

	builder, pres := self.types[type_name]
	if pres {
		return builder(self, options, visiting)
	}

	def, pres := self.structs[type_name]
	if pres {
		return self.describe(def, visiting)
	}

	return nil, fmt.Errorf("%w: %v", NotFoundError, type_name)
}

func (self *Profile) describe(def *StructDefinition,
	visiting map[string]bool) (*Description, error) {

	if visiting[def.Name] {
		return nil, fmt.Errorf("%w: cyclic struct reference %v",
			ProgramError, def.Name)
	}
	visiting[def.Name] = true
	defer delete(visiting, def.Name)

	result := NewDescription()
	for _, field := range def.Fields {
		spec, err := self.resolveSpec(field.Type, field.Options, visiting)
		if err != nil {
			return nil, fmt.Errorf("struct %v field %v: %w",
				def.Name, field.Name, err)
		}
		result.AddField(field.Name, spec)
	}
	return result, nil
}

func (self *Profile) lambdaSpec(expression *vfilter.Lambda) *TypeSpec {
	return &TypeSpec{
		kind:       kindLambda,
		expression: expression,
		scope:      self.scope,
	}
}
