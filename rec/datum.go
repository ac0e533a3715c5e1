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

// Package rec implements the process-wide event buffer: Datum row records
// batched and dispatched to registered archive backends.
package rec

import "github.com/google/uuid"

// Field is one (name, value) pair of a Datum, with an optional shape
// annotation used by the archive backend to pick a fixed vs.
// variable-length db type (spec.md §4.5).
type Field struct {
	Name  string
	Value interface{}
	Shape []int
}

// Datum is one row destined for one table. Datums are exclusively owned by
// the Recorder that allocated them (spec.md §3): agents never hold a
// Datum after calling Record.
type Datum struct {
	rec    *Recorder
	table  string
	fields []Field
}

// Table returns the table this Datum is destined for.
func (d *Datum) Table() string { return d.table }

// Fields returns the Datum's ordered (name, value, shape) triples,
// including the leading SimId field every row carries.
func (d *Datum) Fields() []Field { return d.fields }

// AddVal appends a (name, value) pair to the Datum, returning d so calls
// can be chained the way cobra/pflag chain registration calls.
func (d *Datum) AddVal(name string, value interface{}) *Datum {
	d.fields = append(d.fields, Field{Name: name, Value: value})
	return d
}

// AddShape annotates the most recently added field with a shape vector.
// A missing or zero/negative leading shape entry selects a VL db type for
// that field (spec.md §4.5).
func (d *Datum) AddShape(shape []int) *Datum {
	if len(d.fields) == 0 {
		return d
	}
	d.fields[len(d.fields)-1].Shape = shape
	return d
}

// Record enqueues the Datum into its Recorder. If this completes the
// Recorder's dump-count buffer, Record synchronously dispatches the whole
// buffer to every registered backend and propagates any backend error --
// the Recorder never swallows a backend failure (spec.md §7).
func (d *Datum) Record() error {
	return d.rec.addDatum(d)
}

func simIDField(id uuid.UUID) Field {
	return Field{Name: "SimId", Value: id}
}
