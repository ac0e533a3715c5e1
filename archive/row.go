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
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/scopatz/cyclus/internal/digest"
	"github.com/scopatz/cyclus/rec"
)

// encodeRow packs one Datum's fields into a fixed-width row according to
// schema, spilling any VL field (or VL-addressed sub-element, e.g. each
// string of a VECTOR_VL_STRING) into the dbtype-keyed side store and
// writing its digest key(s) inline.
func (b *tableBackend) encodeRow(schema *Schema, fields []rec.Field) ([]byte, error) {
	row := make([]byte, schema.width)
	for i, f := range fields {
		off := schema.offset[i]
		t := schema.Types[i]
		shape := schema.Shapes[i]
		dst := row[off : off+rowWidth(t, shape)]
		if err := b.encodeField(dst, t, shape, f); err != nil {
			return nil, fmt.Errorf("archive: table %q column %q: %w", schema.Table, f.Name, err)
		}
	}
	return row, nil
}

func (b *tableBackend) encodeField(dst []byte, t DbType, shape [2]int, f rec.Field) error {
	switch t {
	case DbBool:
		v, ok := f.Value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", f.Value)
		}
		if v {
			dst[0] = 1
		}
		return nil
	case DbInt:
		v, err := asInt32(f.Value)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint32(dst, uint32(v))
		return nil
	case DbFloat:
		v, ok := f.Value.(float32)
		if !ok {
			return fmt.Errorf("expected float32, got %T", f.Value)
		}
		binary.BigEndian.PutUint32(dst, math.Float32bits(v))
		return nil
	case DbDouble:
		v, err := asFloat64(f.Value)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint64(dst, math.Float64bits(v))
		return nil
	case DbUUID:
		id, ok := f.Value.(uuid.UUID)
		if !ok {
			return fmt.Errorf("expected uuid.UUID, got %T", f.Value)
		}
		copy(dst, id[:])
		return nil
	case DbString:
		s, ok := f.Value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", f.Value)
		}
		if len(s) > len(dst) {
			return fmt.Errorf("string of %d bytes exceeds %d byte slot", len(s), len(dst))
		}
		copy(dst, s)
		return nil
	case DbVLString:
		s, ok := f.Value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_STRING", []byte(s))
	case DbBlob:
		v, ok := f.Value.([]byte)
		if !ok {
			return fmt.Errorf("expected []byte, got %T", f.Value)
		}
		return b.spillDigest(dst, "BLOB", v)
	case DbVectorInt:
		v, ok := f.Value.(Vector)
		if !ok {
			return fmt.Errorf("expected archive.Vector, got %T", f.Value)
		}
		return encodeFixedInts(dst, v)
	case DbVLVectorInt:
		v, ok := f.Value.(Vector)
		if !ok {
			return fmt.Errorf("expected archive.Vector, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_VECTOR_INT", encodeIntSlice(v))
	case DbSetInt:
		v, ok := f.Value.(Set)
		if !ok {
			return fmt.Errorf("expected archive.Set, got %T", f.Value)
		}
		return encodeFixedInts(dst, v)
	case DbVLSetInt:
		v, ok := f.Value.(Set)
		if !ok {
			return fmt.Errorf("expected archive.Set, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_SET_INT", encodeIntSlice(v))
	case DbListInt:
		v, ok := f.Value.(List)
		if !ok {
			return fmt.Errorf("expected archive.List, got %T", f.Value)
		}
		return encodeFixedInts(dst, v)
	case DbVLListInt:
		v, ok := f.Value.(List)
		if !ok {
			return fmt.Errorf("expected archive.List, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_LIST_INT", encodeIntSlice(v))
	case DbVectorString:
		v, ok := f.Value.(VectorString)
		if !ok {
			return fmt.Errorf("expected archive.VectorString, got %T", f.Value)
		}
		return encodeFixedStrings(dst, v, shape[1])
	case DbVectorVLString:
		v, ok := f.Value.(VectorString)
		if !ok {
			return fmt.Errorf("expected archive.VectorString, got %T", f.Value)
		}
		if len(v) != shape[0] {
			return fmt.Errorf("VectorString of length %d does not match declared shape %d", len(v), shape[0])
		}
		for i, s := range v {
			elem := dst[i*vlKeyWidth : (i+1)*vlKeyWidth]
			if err := b.spillDigest(elem, "VL_STRING", []byte(s)); err != nil {
				return err
			}
		}
		return nil
	case DbVLVectorString:
		v, ok := f.Value.(VectorString)
		if !ok {
			return fmt.Errorf("expected archive.VectorString, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_VECTOR_STRING", encodeFixedWidthStringSlice(v, shape[1]))
	case DbVLVectorVLString:
		v, ok := f.Value.(VectorString)
		if !ok {
			return fmt.Errorf("expected archive.VectorString, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_VECTOR_VL_STRING", encodeVLStringSlice(v))
	case DbPairIntInt:
		v, ok := f.Value.(PairIntInt)
		if !ok {
			return fmt.Errorf("expected archive.PairIntInt, got %T", f.Value)
		}
		binary.BigEndian.PutUint32(dst[0:4], uint32(v.First))
		binary.BigEndian.PutUint32(dst[4:8], uint32(v.Second))
		return nil
	case DbMapIntInt:
		v, ok := f.Value.(MapIntInt)
		if !ok {
			return fmt.Errorf("expected archive.MapIntInt, got %T", f.Value)
		}
		if len(v) != shape[0] {
			return fmt.Errorf("MapIntInt of length %d does not match declared shape %d", len(v), shape[0])
		}
		encodeFixedMap(dst, v)
		return nil
	case DbVLMapIntInt:
		v, ok := f.Value.(MapIntInt)
		if !ok {
			return fmt.Errorf("expected archive.MapIntInt, got %T", f.Value)
		}
		return b.spillDigest(dst, "VL_MAP_INT_INT", encodeVLMap(v))
	default:
		return fmt.Errorf("unsupported db type %v", t)
	}
}

// spillDigest writes payload's content digest into dst (a digest.Size-byte
// slice), appending payload to the named side store kind's Keys/Vals
// dataset pair only the first time this digest is seen. kind is the VL
// dbtype's canonical name (e.g. "VL_STRING", "BLOB"), shared globally
// across every table and column that resolves to it (spec.md §4.5/§6).
func (b *tableBackend) spillDigest(dst []byte, kind string, payload []byte) error {
	ss, err := b.sideStoreFor(kind)
	if err != nil {
		return err
	}
	k, err := ss.put(payload)
	if err != nil {
		return err
	}
	copy(dst, k[:])
	return nil
}

func encodeFixedInts(dst []byte, vals []int32) error {
	if len(vals)*4 != len(dst) {
		return fmt.Errorf("int collection of length %d does not fill its %d byte slot", len(vals), len(dst))
	}
	for i, v := range vals {
		binary.BigEndian.PutUint32(dst[i*4:i*4+4], uint32(v))
	}
	return nil
}

func decodeFixedInts(src []byte) []int32 {
	out := make([]int32, len(src)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(src[i*4 : i*4+4]))
	}
	return out
}

func encodeFixedStrings(dst []byte, strs []string, width int) error {
	if len(strs)*width != len(dst) {
		return fmt.Errorf("string vector of %d x %d bytes does not fill its %d byte slot", len(strs), width, len(dst))
	}
	for i, s := range strs {
		if len(s) > width {
			return fmt.Errorf("vector element %d of %d bytes exceeds %d byte slot", i, len(s), width)
		}
		copy(dst[i*width:(i+1)*width], s)
	}
	return nil
}

func decodeFixedStrings(src []byte, width int) []string {
	if width == 0 {
		return nil
	}
	out := make([]string, len(src)/width)
	for i := range out {
		out[i] = trimNulls(src[i*width : (i+1)*width])
	}
	return out
}

func trimNulls(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// encodeIntSlice/decodeIntSlice pack an arbitrary-length int32 collection
// for the side store: a 4-byte BE count followed by 4 bytes per element.
func encodeIntSlice(vals []int32) []byte {
	out := make([]byte, 4+4*len(vals))
	binary.BigEndian.PutUint32(out[:4], uint32(len(vals)))
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[4+i*4:8+i*4], uint32(v))
	}
	return out
}

func decodeIntSlice(payload []byte) []int32 {
	if len(payload) < 4 {
		return nil
	}
	n := binary.BigEndian.Uint32(payload[:4])
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(payload[4+i*4 : 8+i*4]))
	}
	return out
}

// encodeFixedWidthStringSlice packs a VL_VECTOR_STRING payload: count, then
// the known per-string width, then count*width bytes of null-padded data.
func encodeFixedWidthStringSlice(strs []string, width int) []byte {
	out := make([]byte, 8+len(strs)*width)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(strs)))
	binary.BigEndian.PutUint32(out[4:8], uint32(width))
	for i, s := range strs {
		copy(out[8+i*width:8+(i+1)*width], s)
	}
	return out
}

func decodeFixedWidthStringSlice(payload []byte) []string {
	if len(payload) < 8 {
		return nil
	}
	n := binary.BigEndian.Uint32(payload[0:4])
	width := int(binary.BigEndian.Uint32(payload[4:8]))
	out := make([]string, n)
	for i := range out {
		start := 8 + i*width
		out[i] = trimNulls(payload[start : start+width])
	}
	return out
}

// encodeVLStringSlice/decodeVLStringSlice pack a VL_VECTOR_VL_STRING
// payload: count, then each string as a 4-byte BE length prefix followed
// by its bytes -- neither the count nor any element's width is assumed.
func encodeVLStringSlice(strs []string) []byte {
	size := 4
	for _, s := range strs {
		size += 4 + len(s)
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out[:4], uint32(len(strs)))
	off := 4
	for _, s := range strs {
		binary.BigEndian.PutUint32(out[off:off+4], uint32(len(s)))
		off += 4
		copy(out[off:off+len(s)], s)
		off += len(s)
	}
	return out
}

func decodeVLStringSlice(payload []byte) []string {
	if len(payload) < 4 {
		return nil
	}
	n := binary.BigEndian.Uint32(payload[:4])
	out := make([]string, n)
	off := 4
	for i := range out {
		l := int(binary.BigEndian.Uint32(payload[off : off+4]))
		off += 4
		out[i] = string(payload[off : off+l])
		off += l
	}
	return out
}

// sortedKeys, encodeFixedMap/decodeFixedMap, and encodeVLMap/decodeVLMap
// pack a MapIntInt deterministically -- sorted by key -- so repeated writes
// of an equal map produce identical bytes, which both the side store's
// content-addressed dedup and a fixed-width MAP_INT_INT column depend on.
func sortedKeys(m MapIntInt) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func encodeFixedMap(dst []byte, m MapIntInt) {
	for i, k := range sortedKeys(m) {
		binary.BigEndian.PutUint32(dst[i*8:i*8+4], uint32(k))
		binary.BigEndian.PutUint32(dst[i*8+4:i*8+8], uint32(m[k]))
	}
}

func decodeFixedMap(src []byte) MapIntInt {
	out := make(MapIntInt, len(src)/8)
	for i := 0; i*8 < len(src); i++ {
		k := int32(binary.BigEndian.Uint32(src[i*8 : i*8+4]))
		v := int32(binary.BigEndian.Uint32(src[i*8+4 : i*8+8]))
		out[k] = v
	}
	return out
}

func encodeVLMap(m MapIntInt) []byte {
	keys := sortedKeys(m)
	out := make([]byte, 4+8*len(keys))
	binary.BigEndian.PutUint32(out[:4], uint32(len(keys)))
	for i, k := range keys {
		binary.BigEndian.PutUint32(out[4+i*8:8+i*8], uint32(k))
		binary.BigEndian.PutUint32(out[8+i*8:12+i*8], uint32(m[k]))
	}
	return out
}

func decodeVLMap(payload []byte) MapIntInt {
	if len(payload) < 4 {
		return nil
	}
	n := binary.BigEndian.Uint32(payload[:4])
	out := make(MapIntInt, n)
	for i := 0; i < int(n); i++ {
		k := int32(binary.BigEndian.Uint32(payload[4+i*8 : 8+i*8]))
		v := int32(binary.BigEndian.Uint32(payload[8+i*8 : 12+i*8]))
		out[k] = v
	}
	return out
}

func asInt32(v interface{}) (int32, error) {
	switch n := v.(type) {
	case int:
		return int32(n), nil
	case int32:
		return n, nil
	case int64:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a float, got %T", v)
	}
}

// decodeRow unpacks one fixed-width row into a name -> value map, resolving
// any VL field (or VL-addressed sub-element) through the dbtype-keyed side
// store. DbInt decodes to Go int64 (rather than the int32 its 4-byte row
// encoding uses) since that is the natural Go integer type for arithmetic
// and govaluate query conditions (archive/query.go).
func (b *tableBackend) decodeRow(schema *Schema, row []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(schema.Cols))
	for i, name := range schema.Cols {
		off := schema.offset[i]
		t := schema.Types[i]
		shape := schema.Shapes[i]
		width := rowWidth(t, shape)
		v, err := b.decodeField(row[off:off+width], t, shape)
		if err != nil {
			return nil, fmt.Errorf("archive: table %q column %q: %w", schema.Table, name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (b *tableBackend) decodeField(src []byte, t DbType, shape [2]int) (interface{}, error) {
	switch t {
	case DbBool:
		return src[0] != 0, nil
	case DbInt:
		return int64(int32(binary.BigEndian.Uint32(src))), nil
	case DbFloat:
		return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
	case DbDouble:
		return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
	case DbUUID:
		var id uuid.UUID
		copy(id[:], src)
		return id, nil
	case DbString:
		return trimNulls(src), nil
	case DbVLString:
		payload, err := b.resolveDigest(src, "VL_STRING")
		if err != nil {
			return nil, err
		}
		return string(payload), nil
	case DbBlob:
		return b.resolveDigest(src, "BLOB")
	case DbVectorInt:
		return Vector(decodeFixedInts(src)), nil
	case DbVLVectorInt:
		payload, err := b.resolveDigest(src, "VL_VECTOR_INT")
		if err != nil {
			return nil, err
		}
		return Vector(decodeIntSlice(payload)), nil
	case DbSetInt:
		return Set(decodeFixedInts(src)), nil
	case DbVLSetInt:
		payload, err := b.resolveDigest(src, "VL_SET_INT")
		if err != nil {
			return nil, err
		}
		return Set(decodeIntSlice(payload)), nil
	case DbListInt:
		return List(decodeFixedInts(src)), nil
	case DbVLListInt:
		payload, err := b.resolveDigest(src, "VL_LIST_INT")
		if err != nil {
			return nil, err
		}
		return List(decodeIntSlice(payload)), nil
	case DbVectorString:
		return VectorString(decodeFixedStrings(src, shape[1])), nil
	case DbVectorVLString:
		n := shape[0]
		out := make(VectorString, n)
		for i := 0; i < n; i++ {
			elem := src[i*vlKeyWidth : (i+1)*vlKeyWidth]
			payload, err := b.resolveDigest(elem, "VL_STRING")
			if err != nil {
				return nil, err
			}
			out[i] = string(payload)
		}
		return out, nil
	case DbVLVectorString:
		payload, err := b.resolveDigest(src, "VL_VECTOR_STRING")
		if err != nil {
			return nil, err
		}
		return VectorString(decodeFixedWidthStringSlice(payload)), nil
	case DbVLVectorVLString:
		payload, err := b.resolveDigest(src, "VL_VECTOR_VL_STRING")
		if err != nil {
			return nil, err
		}
		return VectorString(decodeVLStringSlice(payload)), nil
	case DbPairIntInt:
		return PairIntInt{
			First:  int32(binary.BigEndian.Uint32(src[0:4])),
			Second: int32(binary.BigEndian.Uint32(src[4:8])),
		}, nil
	case DbMapIntInt:
		return decodeFixedMap(src), nil
	case DbVLMapIntInt:
		payload, err := b.resolveDigest(src, "VL_MAP_INT_INT")
		if err != nil {
			return nil, err
		}
		return decodeVLMap(payload), nil
	default:
		return nil, fmt.Errorf("unsupported db type %v", t)
	}
}

func (b *tableBackend) resolveDigest(src []byte, kind string) ([]byte, error) {
	var k digest.Key
	copy(k[:], src)
	ss, err := b.sideStoreFor(kind)
	if err != nil {
		return nil, err
	}
	return ss.get(k)
}
