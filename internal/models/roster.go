package models

import (
	"fmt"

	"gopkg.in/yaml.v3"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// Roster layout. Slot 29 is reserved and carries no meaning.
const (
	RosterSize   = 30
	ReservedSlot = 29
)

// Category groups a contiguous range of roster slots.
type Category string

const (
	CategoryMechanics   Category = "mechanics"
	CategoryTechnicians Category = "technicians"
)

// Bounds returns the half-open slot range of the category.
func (c Category) Bounds() (from, to int, err error) {
	switch c {
	case CategoryMechanics:
		return 0, 24, nil
	case CategoryTechnicians:
		return 24, ReservedSlot, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown category %q", apperrors.ErrInvalidInput, c)
	}
}

// Roster is the persisted fixed-size list of known recipients.
type Roster struct {
	List []Slot `yaml:"list" json:"list"`
}

// UnmarshalYAML decodes the list slot by slot. yaml.v3 drops null sequence
// items when the element type is a struct, so empty slots are mapped here.
func (r *Roster) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: roster must be a mapping", node.Line)
	}

	var list *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value != "list" {
			return fmt.Errorf("line %d: unknown field %q in roster", key.Line, key.Value)
		}
		list = value
	}
	if list == nil {
		return fmt.Errorf("line %d: roster requires list", node.Line)
	}
	if list.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: list must be a sequence", list.Line)
	}

	slots := make([]Slot, len(list.Content))
	for i, item := range list.Content {
		if err := slots[i].UnmarshalYAML(item); err != nil {
			return err
		}
	}
	r.List = slots
	return nil
}

// RosterEntry is a slot paired with its index, as listed to the UI.
type RosterEntry struct {
	ID   int  `json:"id"`
	Slot Slot `json:"person"`
}

// EmptyRoster returns a roster of RosterSize empty slots.
func EmptyRoster() Roster {
	return Roster{List: make([]Slot, RosterSize)}
}

// CheckLength rejects rosters that do not hold exactly RosterSize slots.
func (r Roster) CheckLength() error {
	if len(r.List) != RosterSize {
		return fmt.Errorf("roster has %d slots, want %d", len(r.List), RosterSize)
	}
	return nil
}

// Clone returns a deep copy.
func (r Roster) Clone() Roster {
	list := make([]Slot, len(r.List))
	copy(list, r.List)
	return Roster{List: list}
}

func (r Roster) checkIndex(i int) error {
	if i < 0 || i >= len(r.List) {
		return fmt.Errorf("%w: roster index %d", apperrors.ErrSlotOutOfRange, i)
	}
	return nil
}

// Slot returns the slot at index i.
func (r Roster) Slot(i int) (Slot, error) {
	if err := r.checkIndex(i); err != nil {
		return Slot{}, err
	}
	return r.List[i], nil
}

// Person returns the occupant of slot i, or ErrPersonNotFound when it is empty.
func (r Roster) Person(i int) (Person, error) {
	s, err := r.Slot(i)
	if err != nil {
		return Person{}, err
	}
	p, ok := s.Person()
	if !ok {
		return Person{}, fmt.Errorf("%w: roster slot %d", apperrors.ErrPersonNotFound, i)
	}
	return p, nil
}

// SetName sets the name of slot i, creating a person with an empty mail when
// the slot is empty.
func (r *Roster) SetName(i int, name string) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	p, _ := r.List[i].Person()
	p.Name = name
	r.List[i] = Occupied(p)
	return nil
}

// SetMail sets the mail of slot i, creating a person with an empty name when
// the slot is empty.
func (r *Roster) SetMail(i int, mail string) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	p, _ := r.List[i].Person()
	p.Mail = mail
	r.List[i] = Occupied(p)
	return nil
}

// Section lists the slots of category c with their indexes.
func (r Roster) Section(c Category) ([]RosterEntry, error) {
	from, to, err := c.Bounds()
	if err != nil {
		return nil, err
	}
	if to > len(r.List) {
		to = len(r.List)
	}

	entries := make([]RosterEntry, 0, to-from)
	for i := from; i < to; i++ {
		entries = append(entries, RosterEntry{ID: i, Slot: r.List[i]})
	}
	return entries, nil
}

// Normalized returns a copy in which every occupied slot with an empty name
// is empty, whatever its mail.
func (r Roster) Normalized() Roster {
	out := r.Clone()
	for i, s := range out.List {
		if p, ok := s.Person(); ok && p.Name == "" {
			out.List[i] = EmptySlot()
		}
	}
	return out
}

// InvalidNames returns the names of occupied slots whose mail is not a bare
// address, in slot order.
func (r Roster) InvalidNames() []string {
	var names []string
	for _, s := range r.List {
		p, ok := s.Person()
		if !ok {
			continue
		}
		if _, err := validator.ParseAddress(p.Mail); err != nil {
			names = append(names, p.Name)
		}
	}
	return names
}
