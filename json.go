// Support JSON flavored struct definitions.

package structreader

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Velocidex/ordereddict"
)

func (self *StructDefinition) UnmarshalJSON(p []byte) error {
	var tmp []json.RawMessage
	if err := json.Unmarshal(p, &tmp); err != nil {
		return err
	}

	if len(tmp) != 2 {
		return errors.New("Struct Definition should be [name, fields]")
	}

	if err := json.Unmarshal(tmp[0], &self.Name); err != nil {
		return err
	}

	if err := json.Unmarshal(tmp[1], &self.Fields); err != nil {
		return fmt.Errorf("Decoding struct %v: %v", self.Name, err)
	}

	return nil
}

func (self *FieldDefinition) UnmarshalJSON(p []byte) error {
	var tmp []json.RawMessage
	if err := json.Unmarshal(p, &tmp); err != nil {
		return err
	}

	if len(tmp) != 2 && len(tmp) != 3 {
		return errors.New("Field Definition should be [name, type, options?]")
	}

	if err := json.Unmarshal(tmp[0], &self.Name); err != nil {
		return err
	}
	if err := json.Unmarshal(tmp[1], &self.Type); err != nil {
		return err
	}

	if len(tmp) == 3 {
		self.Options = ordereddict.NewDict()
		if err := json.Unmarshal(tmp[2], &self.Options); err != nil {
			return err
		}
	}

	return nil
}
