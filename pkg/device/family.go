// Package device classifies cell names into device families and assigns
// the electrical role of each terminal.
package device

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDevice is returned when a cell name is not in any family table.
	ErrUnknownDevice = errors.New("device: unknown device")
	// ErrUnknownOrdinal is returned when a pin position exceeds the family arity.
	ErrUnknownOrdinal = errors.New("device: unknown pin ordinal")
)

// Kind is the broad device class of a flattened node.
type Kind int

const (
	KindIO Kind = iota
	KindMosfet
	KindResistor
	KindCapacitor
	KindDiode
	KindBJT
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMosfet:
		return "mosfet"
	case KindResistor:
		return "resistor"
	case KindCapacitor:
		return "capacitor"
	case KindDiode:
		return "diode"
	case KindBJT:
		return "bjt"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a configuration label to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "io":
		return KindIO, nil
	case "mosfet":
		return KindMosfet, nil
	case "resistor":
		return KindResistor, nil
	case "capacitor":
		return KindCapacitor, nil
	case "diode":
		return KindDiode, nil
	case "bjt":
		return KindBJT, nil
	}
	return 0, fmt.Errorf("device: unknown family kind %q", s)
}

// Polarity distinguishes p/n MOSFETs and pnp/npn BJTs.
type Polarity int

const (
	PolarityNone Polarity = iota
	PolarityP
	PolarityN
)

// ParsePolarity maps "p", "n" or "" to a Polarity.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "":
		return PolarityNone, nil
	case "p":
		return PolarityP, nil
	case "n":
		return PolarityN, nil
	}
	return 0, fmt.Errorf("device: unknown polarity %q", s)
}

// Family is the classified device type of a cell. Pin roles and arity are
// dispatched on it rather than on the raw cell name.
type Family struct {
	Kind     Kind
	Polarity Polarity
}

// Common families.
var (
	IO        = Family{Kind: KindIO}
	PMOS      = Family{Kind: KindMosfet, Polarity: PolarityP}
	NMOS      = Family{Kind: KindMosfet, Polarity: PolarityN}
	Resistor  = Family{Kind: KindResistor}
	Capacitor = Family{Kind: KindCapacitor}
	Diode     = Family{Kind: KindDiode}
	PNP       = Family{Kind: KindBJT, Polarity: PolarityP}
	NPN       = Family{Kind: KindBJT, Polarity: PolarityN}
)

// String returns the short type name used in exports ("nmos", "res", ...).
func (f Family) String() string {
	switch f.Kind {
	case KindIO:
		return "IO"
	case KindMosfet:
		if f.Polarity == PolarityP {
			return "pmos"
		}
		return "nmos"
	case KindResistor:
		return "res"
	case KindCapacitor:
		return "cap"
	case KindDiode:
		return "diode"
	case KindBJT:
		if f.Polarity == PolarityP {
			return "pnp"
		}
		return "npn"
	}
	return f.Kind.String()
}

// Valid reports whether the polarity is meaningful for the kind.
func (f Family) Valid() bool {
	switch f.Kind {
	case KindMosfet, KindBJT:
		return f.Polarity != PolarityNone
	case KindIO, KindResistor, KindCapacitor, KindDiode:
		return f.Polarity == PolarityNone
	}
	return false
}

// Arity is the maximum number of terminals a device of this family has.
func (f Family) Arity() int {
	switch f.Kind {
	case KindMosfet, KindBJT:
		return 4
	case KindResistor, KindCapacitor:
		return 3
	case KindDiode:
		return 2
	}
	return 1
}

// MinPins is the minimum number of terminals an instance must connect.
// Passives may omit the substrate terminal and BJTs the hbeta terminal.
func (f Family) MinPins() int {
	switch f.Kind {
	case KindMosfet:
		return 4
	case KindBJT:
		return 3
	case KindResistor, KindCapacitor, KindDiode:
		return 2
	}
	return 1
}

// PinRole returns the semantic role of the terminal at ordinal.
func (f Family) PinRole(ordinal int) (Role, error) {
	roles := pinRoles[f.Kind]
	if ordinal < 0 || ordinal >= len(roles) {
		return "", fmt.Errorf("%w: %d for %s", ErrUnknownOrdinal, ordinal, f)
	}
	return roles[ordinal], nil
}

var pinRoles = map[Kind][]Role{
	KindIO:        {RoleIO},
	KindMosfet:    {RoleDrain, RoleGate, RoleSource, RoleSubstrate},
	KindResistor:  {RolePassive, RolePassive, RoleSubstrate},
	KindCapacitor: {RolePassive, RolePassive, RoleSubstrate},
	KindDiode:     {RoleAnode, RoleCathode},
	KindBJT:       {RoleCollector, RoleBase, RoleEmitter, RoleHBeta},
}
