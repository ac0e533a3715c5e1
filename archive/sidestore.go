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

	"github.com/scopatz/cyclus/archive/ncio"
	"github.com/scopatz/cyclus/internal/digest"
)

// vlKeyWidth is the row width Cyclus reserves inline for a VL field: the
// digest.Size-byte content key, which is all a compound row needs to
// carry -- the payload itself lives in the side store.
const vlKeyWidth = digest.Size

// valSlotWidth bounds the size of a single variable-length payload. Values
// larger than this do not fit the fixed-width Vals dataset and fail with
// IOError; spec.md §4.5 does not bound VL payload size, so this is a
// concrete implementation limit rather than a silent truncation.
const valSlotWidth = 8192

// sideStore is the content-addressed VL payload store for one VL dbtype
// kind (one per distinct DbType such as VL_STRING or BLOB, shared globally
// by every table and column whose field resolves to that dbtype): two ncio
// datasets, Keys (digest.Size-byte rows) and Vals (length-prefixed
// fixed-slot rows), addressed by matching position -- the two-dataset
// fallback spec.md §9 explicitly permits in place of the primary design's
// digest-as-5D-sparse-coordinate addressing (see archive/dbtype.go,
// internal/digest, and DESIGN.md).
//
// On open, the full Keys dataset is read once into an in-memory index so
// repeated writes of an already-seen payload dedup without a disk read.
type sideStore struct {
	store    *ncio.Store
	keysName string
	valsName string
	index    map[digest.Key]int // digest -> position in both datasets
}

func openSideStore(store *ncio.Store, kind string) (*sideStore, error) {
	ss := &sideStore{
		store:    store,
		keysName: kind + "Keys",
		valsName: kind + "Vals",
		index:    make(map[digest.Key]int),
	}
	if _, err := store.EnsureDataset(ss.keysName, digest.Size, nil); err != nil {
		return nil, err
	}
	if _, err := store.EnsureDataset(ss.valsName, valSlotWidth+4, nil); err != nil {
		return nil, err
	}
	if err := ss.rebuildIndex(); err != nil {
		return nil, err
	}
	return ss, nil
}

// rebuildIndex reads every key currently on disk into the in-memory
// digest -> position map, matching spec.md §9's "on reopen, Keys is read
// into an in-memory set before any writes."
func (ss *sideStore) rebuildIndex() error {
	pos := 0
	return ss.store.ForEachChunk(ss.keysName, func(rows []byte) (bool, error) {
		for off := 0; off+digest.Size <= len(rows); off += digest.Size {
			var k digest.Key
			copy(k[:], rows[off:off+digest.Size])
			ss.index[k] = pos
			pos++
		}
		return true, nil
	})
}

// put dedups payload by content digest, appending a new Keys/Vals row
// pair only the first time a given digest is seen, and returns the
// digest key to store inline in the compound row.
func (ss *sideStore) put(payload []byte) (digest.Key, error) {
	if len(payload) > valSlotWidth {
		return digest.Key{}, fmt.Errorf("archive: side store %q: payload of %d bytes exceeds the %d byte slot limit", ss.valsName, len(payload), valSlotWidth)
	}
	k := digest.Sum(payload)
	if _, ok := ss.index[k]; ok {
		return k, nil
	}
	pos := ss.store.NumRows(ss.keysName)
	if err := ss.store.AppendRows(ss.keysName, k[:]); err != nil {
		return digest.Key{}, err
	}
	slot := make([]byte, valSlotWidth+4)
	binary.BigEndian.PutUint32(slot[:4], uint32(len(payload)))
	copy(slot[4:], payload)
	if err := ss.store.AppendRows(ss.valsName, slot); err != nil {
		return digest.Key{}, err
	}
	ss.index[k] = pos
	return k, nil
}

// get resolves a digest key back to its payload by the position recorded
// in the in-memory index.
func (ss *sideStore) get(k digest.Key) ([]byte, error) {
	pos, ok := ss.index[k]
	if !ok {
		return nil, fmt.Errorf("archive: side store %q: unknown key %s", ss.valsName, k)
	}
	raw, err := ss.store.ReadRows(ss.valsName, pos, 1)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(raw[:4])
	if int(n) > valSlotWidth {
		return nil, fmt.Errorf("archive: side store %q: corrupt length prefix at position %d", ss.valsName, pos)
	}
	return raw[4 : 4+n], nil
}
