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

package archive

import (
	"fmt"

	"github.com/scopatz/cyclus/archive/ncio"
	"github.com/scopatz/cyclus/rec"
)

// Schema is a table's ordered column list, inferred from the first Datum
// ever recorded for that table and persisted thereafter as the
// cyclus_dbtypes/cyclus_shapes attributes so reopening a table never needs
// to re-inspect a Datum (spec.md §4.5).
type Schema struct {
	Table  string
	Cols   []string
	Types  []DbType
	Shapes [][2]int // resolved (count, width) pair backing each column's layout
	offset []int    // byte offset of each column within a fixed row
	width  int      // total fixed row width, including digest.Size for VL columns
}

// inferSchema builds a Schema from a Datum's fields, in field order.
func inferSchema(table string, fields []rec.Field) (*Schema, error) {
	s := &Schema{Table: table}
	for _, f := range fields {
		t, shape, err := inferDbType(f.Value, f.Shape)
		if err != nil {
			return nil, fmt.Errorf("archive: table %q column %q: %w", table, f.Name, err)
		}
		s.Cols = append(s.Cols, f.Name)
		s.Types = append(s.Types, t)
		s.Shapes = append(s.Shapes, shape)
	}
	s.layout()
	return s, nil
}

func (s *Schema) layout() {
	s.offset = make([]int, len(s.Types))
	off := 0
	for i, t := range s.Types {
		s.offset[i] = off
		off += rowWidth(t, s.Shapes[i])
	}
	s.width = off
}

// matches reports whether fields, taken in order, resolve to exactly this
// Schema's column names, db types, and shapes -- used to reject a Datum
// recorded against a table whose schema has since drifted (spec.md §4.5
// treats schema as fixed once inferred).
func (s *Schema) matches(fields []rec.Field) bool {
	if len(fields) != len(s.Cols) {
		return false
	}
	for i, f := range fields {
		if f.Name != s.Cols[i] {
			return false
		}
		t, shape, err := inferDbType(f.Value, f.Shape)
		if err != nil || t != s.Types[i] || shape != s.Shapes[i] {
			return false
		}
	}
	return true
}

// encode returns the attribute list persisted on a table's ncio dataset so
// Schema can be reconstructed without inspecting a row: one int32 db type
// code and one (count, width) shape pair per column.
func (s *Schema) encode() map[string][]int32 {
	attrs := make(map[string][]int32, 2)
	types := make([]int32, len(s.Types))
	shapes := make([]int32, 0, 2*len(s.Types))
	for i, t := range s.Types {
		types[i] = int32(t)
		shapes = append(shapes, int32(s.Shapes[i][0]), int32(s.Shapes[i][1]))
	}
	attrs["cyclus_dbtypes"] = types
	attrs["cyclus_shapes"] = shapes
	return attrs
}

// decodeSchema rebuilds a Schema from a table's persisted dataset
// attributes plus its column name list, which must be supplied
// separately since ncio attributes only carry int32s, not names; Cyclus
// stores names as a second attribute.
func decodeSchema(table string, store *ncio.Store) (*Schema, error) {
	typeCodes := store.IntAttr(table, "cyclus_dbtypes")
	nameCodes := store.IntAttr(table, "cyclus_colnames")
	shapeCodes := store.IntAttr(table, "cyclus_shapes")
	names := decodeNames(nameCodes)
	if len(typeCodes) == 0 || len(typeCodes) != len(names) || len(shapeCodes) != 2*len(typeCodes) {
		return nil, fmt.Errorf("archive: table %q has no usable persisted schema", table)
	}
	s := &Schema{
		Table:  table,
		Cols:   names,
		Types:  make([]DbType, len(typeCodes)),
		Shapes: make([][2]int, len(typeCodes)),
	}
	for i, c := range typeCodes {
		s.Types[i] = DbType(c)
		s.Shapes[i] = [2]int{int(shapeCodes[2*i]), int(shapeCodes[2*i+1])}
	}
	s.layout()
	return s, nil
}

// encodeNames/decodeNames pack the column name list into an int32
// attribute (length-prefixed UTF-8 bytes, each byte zero-extended to an
// int32) so it round-trips through ncio's existing int-attribute
// mechanism without adding a second attribute value type to the storage
// engine.
func encodeNames(names []string) []int32 {
	var out []int32
	for _, n := range names {
		out = append(out, int32(len(n)))
		for _, b := range []byte(n) {
			out = append(out, int32(b))
		}
	}
	return out
}

func decodeNames(codes []int32) []string {
	var names []string
	for i := 0; i < len(codes); {
		n := int(codes[i])
		i++
		if n < 0 || i+n > len(codes) {
			break
		}
		b := make([]byte, n)
		for j := 0; j < n; j++ {
			b[j] = byte(codes[i+j])
		}
		names = append(names, string(b))
		i += n
	}
	return names
}
