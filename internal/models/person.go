package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Person is a named address as typed by the user. Mail is not validated here.
type Person struct {
	Name string `yaml:"name" json:"name"`
	Mail string `yaml:"mail" json:"mail"`
}

// Slot is one position of a roster or of the ad-hoc list: either empty or
// occupied by a Person. The zero Slot is empty.
type Slot struct {
	occupied bool
	person   Person
}

// EmptySlot returns an unoccupied slot.
func EmptySlot() Slot {
	return Slot{}
}

// Occupied returns a slot holding p.
func Occupied(p Person) Slot {
	return Slot{occupied: true, person: p}
}

// Person returns the occupant, if any.
func (s Slot) Person() (Person, bool) {
	return s.person, s.occupied
}

// IsEmpty reports whether the slot has no occupant.
func (s Slot) IsEmpty() bool {
	return !s.occupied
}

// MarshalYAML encodes an empty slot as null and an occupied one as {name, mail}.
func (s Slot) MarshalYAML() (interface{}, error) {
	if !s.occupied {
		return nil, nil
	}
	return s.person, nil
}

// UnmarshalYAML accepts null or a mapping with exactly the keys name and mail.
func (s *Slot) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*s = Slot{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: slot must be null or a mapping", node.Line)
	}

	var p Person
	seen := make(map[string]bool, 2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: field %q must be a string", value.Line, key.Value)
		}
		switch key.Value {
		case "name":
			p.Name = value.Value
		case "mail":
			p.Mail = value.Value
		default:
			return fmt.Errorf("line %d: unknown field %q in slot", key.Line, key.Value)
		}
		seen[key.Value] = true
	}
	if !seen["name"] || !seen["mail"] {
		return fmt.Errorf("line %d: slot requires both name and mail", node.Line)
	}

	*s = Occupied(p)
	return nil
}

// MarshalJSON mirrors the YAML shape.
func (s Slot) MarshalJSON() ([]byte, error) {
	if !s.occupied {
		return []byte("null"), nil
	}
	return json.Marshal(s.person)
}
