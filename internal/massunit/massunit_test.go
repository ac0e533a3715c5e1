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

package massunit

import (
	"math"
	"testing"
)

func TestToKGFromGrams(t *testing.T) {
	v, err := ToKG(500, G)
	if err != nil {
		t.Fatalf("ToKG: %v", err)
	}
	if math.Abs(v-0.5) > 1e-12 {
		t.Errorf("ToKG(500, G): have %v, want 0.5", v)
	}
}

func TestToKGUnrecognizedUnitFails(t *testing.T) {
	if _, err := ToKG(1, Unit(99)); err == nil {
		t.Error("ToKG with an unrecognized unit should fail")
	}
}

func TestFromKGRoundTrip(t *testing.T) {
	v, err := FromKG(2.5, G)
	if err != nil {
		t.Fatalf("FromKG: %v", err)
	}
	if math.Abs(v-2500) > 1e-9 {
		t.Errorf("FromKG(2.5, G): have %v, want 2500", v)
	}
	back, err := ToKG(v, G)
	if err != nil {
		t.Fatalf("ToKG: %v", err)
	}
	if math.Abs(back-2.5) > 1e-9 {
		t.Errorf("round trip: have %v, want 2.5", back)
	}
}
