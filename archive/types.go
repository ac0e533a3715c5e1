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

// Vector is a field value for VECTOR_INT/VL_VECTOR_INT, the Go counterpart
// of the variant visitor's vector<int> case (original_source/src/hdf5_back.cc).
// Vector, Set, and List share an identical wire encoding; they are distinct
// Go types only so a field's db type reflects its collection semantics the
// way the original distinguished std::vector/std::set/std::list by C++ type.
type Vector []int32

// Set is a field value for SET_INT/VL_SET_INT. Cyclus does not enforce
// uniqueness on write; set semantics are the caller's responsibility.
type Set []int32

// List is a field value for LIST_INT/VL_LIST_INT.
type List []int32

// VectorString is a field value for a string vector. Its resolved db type
// depends on the Shape annotation supplied via Datum.AddShape:
//
//	shape = [n, w]  -> VECTOR_STRING:        n fixed-width strings, width w
//	shape = [n]     -> VECTOR_VL_STRING:     n strings, each spilled individually
//	shape = [0, w]  -> VL_VECTOR_STRING:     unknown count of width-w strings
//	shape = []      -> VL_VECTOR_VL_STRING:  unknown count of unknown-width strings
type VectorString []string

// PairIntInt is a field value for PAIR_INT_INT, always fixed-width.
type PairIntInt struct {
	First, Second int32
}

// MapIntInt is a field value for MAP_INT_INT/VL_MAP_INT_INT. Encoding sorts
// by key so the row bytes (and side-store digest) are deterministic across
// repeated writes of an equal map.
type MapIntInt map[int32]int32
