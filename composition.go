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

package cyclus

import (
	"math"

	"github.com/scopatz/cyclus/nucdata"
)

// Basis distinguishes whether a Composition's fractions are normalized by
// mass or by atom count.
type Basis int

const (
	// Mass is the mass-fraction basis.
	Mass Basis = iota
	// Atom is the atom (mole) -fraction basis.
	Atom
)

func (b Basis) String() string {
	if b == Atom {
		return "ATOM"
	}
	return "MASS"
}

// residueThreshold is the fraction below which normalize() optimizes away
// a zero-valued isotope entry.
const residueThreshold = 1e-30

// Composition is an immutable-after-normalization mapping from isotope
// identifier to fraction, tagged with the basis the fractions are
// expressed in. Once built, a Composition is shared by reference among
// many Materials (spec.md §3); callers never mutate a Composition in
// place -- massify/atomify/normalize all return a new value.
//
// This intentionally departs from the original design's mutable, shared
// Composition (spec.md §9: "re-architect as value-typed, copy-on-write,
// or immutable-after-construction with a separate builder type").
type Composition struct {
	basis   Basis
	frac    map[int]float64
	massFor map[int]float64 // cached mass fractions when basis == Atom, or nil
	atomFor map[int]float64 // cached atom fractions when basis == Mass, or nil
}

// NewComposition builds a Composition from a raw isotope->fraction map in
// the given basis. The returned Composition is not yet normalized; callers
// needing Σfractions == 1 must call Normalize. Negative fractions fail
// construction.
func NewComposition(basis Basis, fractions map[int]float64) (*Composition, error) {
	frac := make(map[int]float64, len(fractions))
	for iso, f := range fractions {
		if f < 0 {
			return nil, valueErrorf("composition", "negative fraction %g for isotope %d", f, iso)
		}
		frac[iso] = f
	}
	return &Composition{basis: basis, frac: frac}, nil
}

// Basis returns the active basis.
func (c *Composition) Basis() Basis { return c.basis }

// Normalize returns a copy of c with every fraction divided by Σfractions.
// It fails with ValueError if Σfractions <= 0. Entries that fall below
// residueThreshold after scaling are dropped.
func (c *Composition) Normalize() (*Composition, error) {
	// Neumaier-compensated summation: spec.md §4.2 mandates compensation
	// for the conservation tests to hold at double precision once many
	// small per-isotope fractions are summed (see kahan.go).
	vals := make([]float64, 0, len(c.frac))
	for _, f := range c.frac {
		vals = append(vals, f)
	}
	sum := kahanSum(vals)
	if sum <= 0 {
		return nil, valueErrorf("normalize", "composition sums to %g, must be > 0", sum)
	}
	out := make(map[int]float64, len(c.frac))
	for iso, f := range c.frac {
		v := f / sum
		if math.Abs(v) < residueThreshold {
			continue
		}
		out[iso] = v
	}
	return &Composition{basis: c.basis, frac: out}, nil
}

// massify returns c expressed on the Mass basis, converting atom fractions
// to mass fractions using nucdata's static atomic-mass table if necessary.
// massify is idempotent: calling it on an already-Mass Composition returns
// an equal Composition.
func (c *Composition) Massify() *Composition {
	if c.basis == Mass {
		return c
	}
	if c.massFor != nil {
		return &Composition{basis: Mass, frac: c.massFor, atomFor: c.frac}
	}
	mass := make(map[int]float64, len(c.frac))
	var total float64
	for iso, atomFrac := range c.frac {
		m := atomFrac * nucdata.AtomicMass(iso)
		mass[iso] = m
		total += m
	}
	if total > 0 {
		for iso := range mass {
			mass[iso] /= total
		}
	}
	return &Composition{basis: Mass, frac: mass, atomFor: c.frac}
}

// Atomify returns c expressed on the Atom basis. See Massify.
func (c *Composition) Atomify() *Composition {
	if c.basis == Atom {
		return c
	}
	if c.atomFor != nil {
		return &Composition{basis: Atom, frac: c.atomFor, massFor: c.frac}
	}
	atom := make(map[int]float64, len(c.frac))
	var total float64
	for iso, massFrac := range c.frac {
		m := nucdata.AtomicMass(iso)
		if m == 0 {
			continue
		}
		a := massFrac / m
		atom[iso] = a
		total += a
	}
	if total > 0 {
		for iso := range atom {
			atom[iso] /= total
		}
	}
	return &Composition{basis: Atom, frac: atom, massFor: c.frac}
}

// MassFraction returns the mass fraction of iso, or 0 if absent.
func (c *Composition) MassFraction(iso int) float64 {
	return c.Massify().frac[iso]
}

// AtomFraction returns the atom fraction of iso, or 0 if absent.
func (c *Composition) AtomFraction(iso int) float64 {
	return c.Atomify().frac[iso]
}

// Isotopes returns every isotope with an entry in the active basis,
// zero-valued entries included, in no particular order.
func (c *Composition) Isotopes() []int {
	out := make([]int, 0, len(c.frac))
	for iso := range c.frac {
		out = append(out, iso)
	}
	return out
}

// Fraction returns the fraction of iso in the active basis (the basis c
// was constructed/converted with), or 0 if absent.
func (c *Composition) Fraction(iso int) float64 {
	return c.frac[iso]
}

// AlmostEqual reports whether every isotope appearing in c or other has
// fractions within eps of each other, in c's active basis.
func (c *Composition) AlmostEqual(other *Composition, eps float64) bool {
	o := other
	if other.basis != c.basis {
		if c.basis == Mass {
			o = other.Massify()
		} else {
			o = other.Atomify()
		}
	}
	seen := make(map[int]bool, len(c.frac)+len(o.frac))
	for iso := range c.frac {
		seen[iso] = true
	}
	for iso := range o.frac {
		seen[iso] = true
	}
	for iso := range seen {
		if math.Abs(c.frac[iso]-o.frac[iso]) > eps {
			return false
		}
	}
	return true
}

// clone returns a deep copy of c.
func (c *Composition) clone() *Composition {
	out := &Composition{basis: c.basis, frac: make(map[int]float64, len(c.frac))}
	for iso, f := range c.frac {
		out.frac[iso] = f
	}
	return out
}
