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
	"testing"
)

func TestNormalize(t *testing.T) {
	c, err := NewComposition(Mass, map[int]float64{92235: 1, 92238: 3})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	n, err := c.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if have, want := n.MassFraction(92235), 0.25; math.Abs(have-want) > 1e-12 {
		t.Errorf("MassFraction(92235): have %v, want %v", have, want)
	}
	if have, want := n.MassFraction(92238), 0.75; math.Abs(have-want) > 1e-12 {
		t.Errorf("MassFraction(92238): have %v, want %v", have, want)
	}
}

func TestNormalizeNonPositiveSum(t *testing.T) {
	c, err := NewComposition(Mass, map[int]float64{92235: 0})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	if _, err := c.Normalize(); err == nil {
		t.Error("Normalize of a zero-sum composition should fail")
	}
}

func TestNegativeFractionRejected(t *testing.T) {
	if _, err := NewComposition(Mass, map[int]float64{92235: -1}); err == nil {
		t.Error("NewComposition should reject a negative fraction")
	}
}

func TestMassifyAtomifyRoundTrip(t *testing.T) {
	c, err := NewComposition(Mass, map[int]float64{92235: 0.05, 92238: 0.95})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	c, err = c.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	a := c.Atomify()
	if a.Basis() != Atom {
		t.Fatalf("Atomify basis: have %v, want %v", a.Basis(), Atom)
	}
	back := a.Massify()
	if !c.AlmostEqual(back, 1e-9) {
		t.Errorf("mass->atom->mass round trip: have %v, want %v", back, c)
	}
}

func TestMassifyIdempotent(t *testing.T) {
	c, err := NewComposition(Mass, map[int]float64{92235: 1})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	if c.Massify() != c {
		t.Error("Massify on an already-Mass composition should return the same value")
	}
}

func TestAlmostEqualAcrossBasis(t *testing.T) {
	mass, err := NewComposition(Mass, map[int]float64{92235: 1})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	atom := mass.Atomify()
	if !mass.AlmostEqual(atom, 1e-9) {
		t.Error("a single-isotope composition should be AlmostEqual across basis conversion")
	}
}
