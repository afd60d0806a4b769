// Package pedigree provides parsing and validation of family pedigrees.
package pedigree

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// TraitStatus is the observation of the trait for a single person.
type TraitStatus int8

// Trait observations. A person with TraitUnknown imposes no
// constraint on the inference.
const (
	TraitUnknown TraitStatus = iota
	TraitAbsent
	TraitPresent
)

// String returns a human-readable trait observation.
func (s TraitStatus) String() string {
	switch s {
	case TraitAbsent:
		return "absent"
	case TraitPresent:
		return "present"
	}
	return "unknown"
}

// Person is a single pedigree record. Mother and Father are either
// both empty (a founder) or both names of other persons in the same
// pedigree.
type Person struct {
	Name   string
	Mother string
	Father string
	Trait  TraitStatus
}

// IsFounder returns true if the person has no recorded parents.
func (p *Person) IsFounder() bool {
	return p.Mother == "" && p.Father == ""
}

// Pedigree stores persons in the input order.
type Pedigree struct {
	names   []string
	persons map[string]*Person
}

// New creates an empty pedigree.
func New() *Pedigree {
	return &Pedigree{
		persons: make(map[string]*Person),
	}
}

// Add adds a person to the pedigree. Names must be unique and non-empty.
func (ped *Pedigree) Add(p *Person) error {
	if p.Name == "" {
		return errors.New("person without a name")
	}
	if _, ok := ped.persons[p.Name]; ok {
		return fmt.Errorf("duplicate person %q", p.Name)
	}
	ped.names = append(ped.names, p.Name)
	ped.persons[p.Name] = p
	return nil
}

// Get returns a person by name, nil if not present.
func (ped *Pedigree) Get(name string) *Person {
	return ped.persons[name]
}

// Names returns all person names in the input order.
func (ped *Pedigree) Names() []string {
	return ped.names
}

// Len returns the number of persons.
func (ped *Pedigree) Len() int {
	return len(ped.names)
}

// NFounders returns the number of persons without recorded parents.
func (ped *Pedigree) NFounders() (n int) {
	for _, name := range ped.names {
		if ped.persons[name].IsFounder() {
			n++
		}
	}
	return
}

// Validate checks the pedigree invariants: every person is either a
// founder or has two parents, parent references resolve, and the
// parent graph has no cycles.
func (ped *Pedigree) Validate() error {
	for _, name := range ped.names {
		p := ped.persons[name]
		if (p.Mother == "") != (p.Father == "") {
			return fmt.Errorf("person %q has only one parent", name)
		}
		if p.IsFounder() {
			continue
		}
		if ped.persons[p.Mother] == nil {
			return fmt.Errorf("person %q: unknown mother %q", name, p.Mother)
		}
		if ped.persons[p.Father] == nil {
			return fmt.Errorf("person %q: unknown father %q", name, p.Father)
		}
	}
	return ped.checkCycles()
}

// checkCycles searches for a cycle in the parent graph using a
// depth-first walk along parent references.
func (ped *Pedigree) checkCycles() error {
	const (
		white = iota // not visited
		grey         // on the current path
		black        // finished
	)
	color := make(map[string]int, len(ped.names))

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case grey:
			return fmt.Errorf("pedigree cycle through %q", name)
		case black:
			return nil
		}
		color[name] = grey
		p := ped.persons[name]
		if !p.IsFounder() {
			if err := visit(p.Mother); err != nil {
				return err
			}
			if err := visit(p.Father); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}

	for _, name := range ped.names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// ParseCSV parses a pedigree from a CSV file with a header line and
// the columns name, mother, father and trait. The mother and father
// columns must be both blank or both valid names. The trait column is
// "1" or "0" if the trait observation is known, blank otherwise.
func ParseCSV(rd io.Reader) (*Pedigree, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading pedigree header: %v", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range []string{"name", "mother", "father", "trait"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in the pedigree header", name)
		}
	}

	ped := New()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading pedigree: %v", err)
		}

		var trait TraitStatus
		switch rec[cols["trait"]] {
		case "":
			trait = TraitUnknown
		case "0":
			trait = TraitAbsent
		case "1":
			trait = TraitPresent
		default:
			return nil, fmt.Errorf("invalid trait value %q for %q",
				rec[cols["trait"]], rec[cols["name"]])
		}

		p := &Person{
			Name:   rec[cols["name"]],
			Mother: rec[cols["mother"]],
			Father: rec[cols["father"]],
			Trait:  trait,
		}
		if err := ped.Add(p); err != nil {
			return nil, err
		}
	}

	if err := ped.Validate(); err != nil {
		return nil, err
	}
	return ped, nil
}
