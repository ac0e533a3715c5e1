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

package store

import (
	"math"
	"testing"

	"github.com/scopatz/cyclus"
)

func newTestMaterials(t *testing.T, ctx *cyclus.SimulationContext, qtys ...float64) []*cyclus.Material {
	t.Helper()
	comp, err := cyclus.NewComposition(cyclus.Mass, map[int]float64{92235: 1})
	if err != nil {
		t.Fatalf("NewComposition: %v", err)
	}
	var out []*cyclus.Material
	for _, q := range qtys {
		m, err := ctx.NewMaterial(q, comp)
		if err != nil {
			t.Fatalf("NewMaterial: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestFIFOOrder(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 1, 2, 3)
	s := New()
	for _, m := range ms {
		if err := s.AddOne(m); err != nil {
			t.Fatalf("AddOne: %v", err)
		}
	}
	for i, want := range ms {
		got, err := s.RemoveOne()
		if err != nil {
			t.Fatalf("RemoveOne: %v", err)
		}
		if got != want {
			t.Errorf("item %d: have %v, want %v", i, got, want)
		}
	}
}

func TestCapacityAllOrNothing(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 4, 4, 4)
	s := New()
	if err := s.MakeLimited(10); err != nil {
		t.Fatalf("MakeLimited: %v", err)
	}
	if err := s.AddAll(ms); err == nil {
		t.Fatal("AddAll of 12kg into a 10kg-capacity store should fail")
	}
	if have, want := s.Count(), 0; have != want {
		t.Fatalf("store should be unchanged after a failed AddAll: have %d items, want %d", have, want)
	}
}

func TestSplitPolicyExact(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 2.5, 2.5, 2.5, 2.5, 2.5)
	s := New()
	s.MakeSplitable()
	if err := s.AddAll(ms); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	out, err := s.RemoveQty(6)
	if err != nil {
		t.Fatalf("RemoveQty: %v", err)
	}
	var sum float64
	for _, m := range out {
		sum += m.Quantity()
	}
	if math.Abs(sum-6) > 1e-9 {
		t.Errorf("EXACT removal sum: have %v, want 6", sum)
	}
	if have, want := len(out), 3; have != want {
		t.Errorf("EXACT removal item count (2 whole + 1 split): have %d, want %d", have, want)
	}
	if math.Abs(s.Inventory()-6.5) > 1e-9 {
		t.Errorf("remaining inventory: have %v, want 6.5", s.Inventory())
	}
}

func TestSplitPolicyOver(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 2.5, 2.5, 2.5, 2.5, 2.5)
	s := New()
	s.MakeNotSplitableOver()
	if err := s.AddAll(ms); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	out, err := s.RemoveQty(6)
	if err != nil {
		t.Fatalf("RemoveQty: %v", err)
	}
	var sum float64
	for _, m := range out {
		sum += m.Quantity()
	}
	if sum < 6 {
		t.Errorf("OVER removal sum should be >= requested: have %v, want >= 6", sum)
	}
	if math.Abs(sum-7.5) > 1e-9 {
		t.Errorf("OVER removal sum: have %v, want 7.5 (3 whole items)", sum)
	}
}

func TestSplitPolicyUnder(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 2.5, 2.5, 2.5, 2.5, 2.5)
	s := New()
	s.MakeNotSplitableUnder()
	if err := s.AddAll(ms); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	out, err := s.RemoveQty(6)
	if err != nil {
		t.Fatalf("RemoveQty: %v", err)
	}
	var sum float64
	for _, m := range out {
		sum += m.Quantity()
	}
	if sum > 6 {
		t.Errorf("UNDER removal sum should be <= requested: have %v, want <= 6", sum)
	}
	if math.Abs(sum-5) > 1e-9 {
		t.Errorf("UNDER removal sum: have %v, want 5 (2 whole items)", sum)
	}
}

func TestRemoveQtyExceedingInventoryFails(t *testing.T) {
	ctx := cyclus.NewSimulationContext(nil)
	ms := newTestMaterials(t, ctx, 1, 1)
	s := New()
	if err := s.AddAll(ms); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if _, err := s.RemoveQty(5); err == nil {
		t.Error("RemoveQty beyond inventory should fail under the EXACT policy")
	}
}
