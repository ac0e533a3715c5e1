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

// Package archive implements the on-disk columnar backend: a rec.Backend
// that groups Datums by table, infers and persists a per-table schema of
// db types on first sight, and appends rows as fixed-width chunks via the
// archive/ncio storage engine, spilling variable-length fields into a
// content-addressed side store.
package archive

import (
	"fmt"

	"github.com/google/uuid"
)

// DbType is the closed set of field encodings a Datum field resolves to,
// mirroring the boost::spirit variant visitor's dbtype inference
// (original_source/src/hdf5_back.cc:207-379) reimplemented as a Go type
// switch. Every VL_* variant has a non-VL sibling it falls back from (or,
// for BLOB, stands permanently VL for) per spec.md §4.5's table.
type DbType int

const (
	DbBool DbType = iota
	DbInt
	DbFloat
	DbDouble
	DbUUID
	DbString
	DbVLString
	DbBlob
	DbVectorInt
	DbVLVectorInt
	DbVectorString
	DbVectorVLString
	DbVLVectorString
	DbVLVectorVLString
	DbSetInt
	DbListInt
	DbVLSetInt
	DbVLListInt
	DbPairIntInt
	DbMapIntInt
	DbVLMapIntInt
)

// dbTypeNames gives each DbType its canonical spec.md §4.5 name. For a VL
// dbtype this name doubles as the side store "kind": every table/column
// whose field resolves to that dbtype shares the same <name>Keys/<name>Vals
// dataset pair (archive/sidestore.go, archive/backend.go), so identical
// payloads dedup globally rather than per table/column.
var dbTypeNames = [...]string{
	"BOOL", "INT", "FLOAT", "DOUBLE", "UUID", "STRING", "VL_STRING", "BLOB",
	"VECTOR_INT", "VL_VECTOR_INT", "VECTOR_STRING", "VECTOR_VL_STRING",
	"VL_VECTOR_STRING", "VL_VECTOR_VL_STRING", "SET_INT", "LIST_INT",
	"VL_SET_INT", "VL_LIST_INT", "PAIR_INT_INT", "MAP_INT_INT",
	"VL_MAP_INT_INT",
}

func (t DbType) String() string {
	if int(t) < 0 || int(t) >= len(dbTypeNames) {
		return fmt.Sprintf("DbType(%d)", int(t))
	}
	return dbTypeNames[t]
}

// rowWidth returns a column's fixed per-row byte width given its resolved
// shape pair (count, width), including the digest.Size-byte key width
// reserved inline for any VL variant -- the payload itself lives in the
// side store (archive/sidestore.go).
func rowWidth(t DbType, shape [2]int) int {
	switch t {
	case DbBool:
		return 1
	case DbInt, DbFloat:
		return 4
	case DbDouble:
		return 8
	case DbUUID:
		return 16
	case DbString:
		return shape[0]
	case DbVLString, DbBlob, DbVLVectorInt, DbVLVectorString, DbVLVectorVLString,
		DbVLSetInt, DbVLListInt, DbVLMapIntInt:
		return vlKeyWidth
	case DbVectorInt, DbSetInt, DbListInt:
		return 4 * shape[0]
	case DbVectorString:
		return shape[0] * shape[1]
	case DbVectorVLString:
		return vlKeyWidth * shape[0]
	case DbPairIntInt:
		return 8
	case DbMapIntInt:
		return 8 * shape[0]
	default:
		return 0
	}
}

func shapeAt(shape []int, i int) int {
	if i >= len(shape) {
		return 0
	}
	return shape[i]
}

// inferDbType classifies a Field's Go value and shape annotation into a
// DbType plus its resolved (count, width) shape pair. A missing or
// zero-or-negative leading shape entry selects the VL variant of whichever
// family the value belongs to (spec.md §4.5). VectorString additionally
// consults shape[1] (the per-string width) to pick among VECTOR_STRING,
// VECTOR_VL_STRING, VL_VECTOR_STRING, and VL_VECTOR_VL_STRING -- see
// VectorString's doc comment in archive/types.go for the full table.
func inferDbType(value interface{}, shape []int) (DbType, [2]int, error) {
	s0, s1 := shapeAt(shape, 0), shapeAt(shape, 1)
	switch value.(type) {
	case bool:
		return DbBool, [2]int{}, nil
	case int, int32, int64:
		return DbInt, [2]int{}, nil
	case float32:
		return DbFloat, [2]int{}, nil
	case float64:
		return DbDouble, [2]int{}, nil
	case uuid.UUID:
		return DbUUID, [2]int{}, nil
	case string:
		if s0 > 0 {
			return DbString, [2]int{s0, 0}, nil
		}
		return DbVLString, [2]int{}, nil
	case []byte:
		return DbBlob, [2]int{}, nil
	case Vector:
		if s0 > 0 {
			return DbVectorInt, [2]int{s0, 0}, nil
		}
		return DbVLVectorInt, [2]int{}, nil
	case Set:
		if s0 > 0 {
			return DbSetInt, [2]int{s0, 0}, nil
		}
		return DbVLSetInt, [2]int{}, nil
	case List:
		if s0 > 0 {
			return DbListInt, [2]int{s0, 0}, nil
		}
		return DbVLListInt, [2]int{}, nil
	case VectorString:
		switch {
		case s0 > 0 && s1 > 0:
			return DbVectorString, [2]int{s0, s1}, nil
		case s0 > 0:
			return DbVectorVLString, [2]int{s0, 0}, nil
		case s1 > 0:
			return DbVLVectorString, [2]int{0, s1}, nil
		default:
			return DbVLVectorVLString, [2]int{}, nil
		}
	case PairIntInt:
		return DbPairIntInt, [2]int{}, nil
	case MapIntInt:
		if s0 > 0 {
			return DbMapIntInt, [2]int{s0, 0}, nil
		}
		return DbVLMapIntInt, [2]int{}, nil
	default:
		return 0, [2]int{}, fmt.Errorf("archive: cannot infer db type for value of type %T", value)
	}
}
