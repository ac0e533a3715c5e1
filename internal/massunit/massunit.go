/*
Copyright © 2024 the Cyclus authors.
This file is part of Cyclus.

Cyclus is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Cyclus is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Cyclus.  If not, see <http://www.gnu.org/licenses/>.*/

// Package massunit resolves the closed {G, KG} mass-unit enum used
// throughout the materials core onto github.com/ctessum/unit's dimensional
// Unit type. Any value outside the {KG, G} enum fails with ErrUnrecognized
// (spec.md §4.2: "an unrecognized unit fails").
package massunit

import (
	"fmt"

	"github.com/ctessum/unit"
)

// Unit is the closed enumeration of mass units Material and MaterialStore
// accept at their boundary. Internal storage is always kilograms.
type Unit int

const (
	// KG is kilograms, the internal storage unit.
	KG Unit = iota
	// G is grams.
	G
)

func (u Unit) String() string {
	switch u {
	case KG:
		return "KG"
	case G:
		return "G"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ErrUnrecognized is returned by ToKG/FromKG for any Unit outside {KG, G}.
type ErrUnrecognized struct {
	Unit Unit
}

func (e *ErrUnrecognized) Error() string {
	return fmt.Sprintf("massunit: unrecognized mass unit %v", e.Unit)
}

// ToKG converts a quantity expressed in u to kilograms. The result is built
// as a unit.Kilogram quantity with unit.New and read back with Value();
// grams are divided by 1000 before that. No dimension comparison takes
// place: any u outside {KG, G} fails with ErrUnrecognized.
func ToKG(value float64, u Unit) (float64, error) {
	switch u {
	case KG:
		return unit.New(value, unit.Kilogram).Value(), nil
	case G:
		return unit.New(value/1000, unit.Kilogram).Value(), nil
	default:
		return 0, &ErrUnrecognized{Unit: u}
	}
}

// FromKG converts a kilogram quantity to u.
func FromKG(valueKG float64, u Unit) (float64, error) {
	switch u {
	case KG:
		return valueKG, nil
	case G:
		return valueKG * 1000, nil
	default:
		return 0, &ErrUnrecognized{Unit: u}
	}
}
