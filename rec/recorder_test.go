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

package rec

import (
	"testing"

	"github.com/google/uuid"
)

// fakeBackend records how many rows it has seen per call, for asserting
// the Recorder's dump-count-triggered flush cadence.
type fakeBackend struct {
	notifyCalls []int // length of each batch passed to Notify
	flushCalls  int
	closeCalls  int
}

func (b *fakeBackend) Notify(rows []*Datum) error {
	b.notifyCalls = append(b.notifyCalls, len(rows))
	return nil
}
func (b *fakeBackend) Flush() error { b.flushCalls++; return nil }
func (b *fakeBackend) Close() error { b.closeCalls++; return nil }

func TestDumpCountTriggersAutomaticFlush(t *testing.T) {
	b := &fakeBackend{}
	r := New(10, uuid.New(), nil)
	r.RegisterBackend(b)

	for i := 0; i < 25; i++ {
		d, err := r.NewDatum("T")
		if err != nil {
			t.Fatalf("NewDatum: %v", err)
		}
		d.AddVal("I", i)
		if err := d.Record(); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if have, want := len(b.notifyCalls), 2; have != want {
		t.Fatalf("automatic Notify calls after 25 records with dump_count=10: have %d, want %d", have, want)
	}
	for i, n := range b.notifyCalls {
		if n != 10 {
			t.Errorf("automatic batch %d size: have %d, want 10", i, n)
		}
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if have, want := len(b.notifyCalls), 3; have != want {
		t.Fatalf("Notify calls after Close: have %d, want %d", have, want)
	}
	if have, want := b.notifyCalls[2], 5; have != want {
		t.Fatalf("final flush batch size: have %d, want %d", have, want)
	}
	if b.closeCalls != 1 {
		t.Errorf("Close should be called on the backend exactly once, have %d", b.closeCalls)
	}
}

func TestClosedRecorderRejectsNewDatum(t *testing.T) {
	r := New(5, uuid.New(), nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.NewDatum("T"); err == nil {
		t.Error("NewDatum on a closed Recorder should fail")
	}
}

func TestMultipleBackendsNotifiedInRegistrationOrder(t *testing.T) {
	var order []int
	mk := func(id int) *orderedBackend { return &orderedBackend{id: id, order: &order} }
	r := New(1, uuid.New(), nil)
	r.RegisterBackend(mk(1))
	r.RegisterBackend(mk(2))

	d, err := r.NewDatum("T")
	if err != nil {
		t.Fatalf("NewDatum: %v", err)
	}
	d.AddVal("X", 1)
	if err := d.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if have, want := len(order), 2; have != want {
		t.Fatalf("notify count: have %d, want %d", have, want)
	}
	if order[0] != 1 || order[1] != 2 {
		t.Errorf("notify order: have %v, want [1 2]", order)
	}
}

type orderedBackend struct {
	id    int
	order *[]int
}

func (b *orderedBackend) Notify(rows []*Datum) error { *b.order = append(*b.order, b.id); return nil }
func (b *orderedBackend) Flush() error               { return nil }
func (b *orderedBackend) Close() error               { return nil }

func TestSimIDStampedOnEveryRow(t *testing.T) {
	id := uuid.New()
	r := New(2, id, nil)
	d, err := r.NewDatum("T")
	if err != nil {
		t.Fatalf("NewDatum: %v", err)
	}
	found := false
	for _, f := range d.Fields() {
		if f.Name == "SimId" {
			if f.Value.(uuid.UUID) != id {
				t.Errorf("SimId field: have %v, want %v", f.Value, id)
			}
			found = true
		}
	}
	if !found {
		t.Error("every Datum should carry a SimId field")
	}
}
