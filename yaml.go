package structreader

import (
	"errors"
	"fmt"

	"github.com/Velocidex/ordereddict"
)

type FieldDefinition struct {
	Name string

	// Name of the type of reader in this field.
	Type string

	// Options to the type
	Options *ordereddict.Dict
}

type StructDefinition struct {
	Name   string
	Fields []*FieldDefinition
}

func (self *StructDefinition) UnmarshalYAML(unmarshal func(v interface{}) error) error {
	var values []interface{}
	err := unmarshal(&values)
	if err != nil {
		return err
	}

	if len(values) != 2 {
		return errors.New("Struct Definition should be [name, fields]")
	}

	ok := false
	self.Name, ok = values[0].(string)
	if !ok {
		return errors.New("Name should be a string")
	}

	fields, ok := values[1].([]interface{})
	if !ok {
		return errors.New("Fields should be a list of field definitions")
	}

	for _, field_def := range fields {
		field, ok := field_def.([]interface{})
		if !ok {
			return fmt.Errorf("%v: Field Definition should be [name, type, options?]",
				self.Name)
		}

		if len(field) != 2 && len(field) != 3 {
			return fmt.Errorf("%v: Field Definition should be [name, type, options?]",
				self.Name)
		}

		new_field := &FieldDefinition{}
		new_field.Name, ok = field[0].(string)
		if !ok {
			return fmt.Errorf("%v: field name should be a string", self.Name)
		}

		new_field.Type, ok = field[1].(string)
		if !ok {
			return fmt.Errorf("%v: field %v type should be a string",
				self.Name, new_field.Name)
		}

		if len(field) == 3 {
			option_map, ok := field[2].(map[interface{}]interface{})
			if !ok {
				return fmt.Errorf("%v: field %v options should be a map",
					self.Name, new_field.Name)
			}
			options, err := to_ordereddict(option_map)
			if err != nil {
				return fmt.Errorf("%v: field %v options %v",
					self.Name, new_field.Name, err)
			}
			new_field.Options = options
		}
		self.Fields = append(self.Fields, new_field)
	}

	return nil
}

func to_ordereddict(dict map[interface{}]interface{}) (*ordereddict.Dict, error) {
	var err error
	result := ordereddict.NewDict()
	for k, v := range dict {
		opt_name, ok := k.(string)
		if !ok {
			return nil, errors.New("keys should be strings")
		}
		v_dict, ok := v.(map[interface{}]interface{})
		if ok {
			v, err = to_ordereddict(v_dict)
			if err != nil {
				return nil, err
			}
		}
		result.Set(opt_name, v)
	}

	return result, nil
}
