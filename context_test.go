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

import "testing"

type stepClock struct{ t int }

func (c *stepClock) Now() int { return c.t }

func TestContextRegisterAndForget(t *testing.T) {
	ctx := NewSimulationContext(nil)
	comp, err := NewComposition(Mass, map[int]float64{92235: 1})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	m1, err := ctx.NewMaterial(1, comp)
	if err != nil {
		t.Fatalf("NewMaterial: %v", err)
	}
	m2, err := ctx.NewMaterial(2, comp)
	if err != nil {
		t.Fatalf("NewMaterial: %v", err)
	}
	if have, want := ctx.Registered(), 2; have != want {
		t.Fatalf("Registered: have %d, want %d", have, want)
	}
	ctx.Forget(m1)
	if have, want := ctx.Registered(), 1; have != want {
		t.Fatalf("Registered after Forget: have %d, want %d", have, want)
	}
	ctx.Forget(m1) // idempotent
	if have, want := ctx.Registered(), 1; have != want {
		t.Fatalf("Registered after double Forget: have %d, want %d", have, want)
	}
	if _, err := m2.Mass(0); err != nil {
		t.Fatalf("Mass: %v", err)
	}
}

func TestDecayAllStampsLastUpdateTime(t *testing.T) {
	clk := &stepClock{}
	ctx := NewSimulationContext(clk)
	comp, err := NewComposition(Mass, map[int]float64{90232: 1})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	m, err := ctx.NewMaterial(1, comp)
	if err != nil {
		t.Fatalf("NewMaterial: %v", err)
	}
	clk.t = 5
	if err := ctx.DecayAll(1); err != nil {
		t.Fatalf("DecayAll: %v", err)
	}
	if have, want := m.LastUpdateTime(), 5; have != want {
		t.Errorf("LastUpdateTime: have %d, want %d", have, want)
	}
}
