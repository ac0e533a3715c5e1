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

package nucdata

import (
	"math"
	"testing"
)

func TestAtomicMassKnownIsotope(t *testing.T) {
	if have, want := AtomicMass(92235), 235.04393; math.Abs(have-want) > 1e-6 {
		t.Errorf("AtomicMass(92235): have %v, want %v", have, want)
	}
}

func TestAtomicMassFallsBackToMassNumber(t *testing.T) {
	if have, want := AtomicMass(11023), 23.0; have != want {
		t.Errorf("AtomicMass(11023) fallback: have %v, want %v", have, want)
	}
}

func TestDecayConstantUnlistedIsStable(t *testing.T) {
	if have, want := DecayConstant(8016), 0.0; have != want {
		t.Errorf("DecayConstant for a stable isotope should be 0: have %v, want %v", have, want)
	}
}
