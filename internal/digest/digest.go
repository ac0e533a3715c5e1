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

// Package digest computes the 160-bit content hashes the archive backend's
// variable-length side store uses both as a key and, reinterpreted as five
// big-endian 32-bit words, as a 5-D sparse array coordinate. This mirrors
// the teacher's tiny internal/hash helper package, specialized to produce
// an exact 160-bit digest rather than a variable-length fingerprint.
package digest

import "golang.org/x/crypto/ripemd160"

// Size is the digest length in bytes (160 bits).
const Size = ripemd160.Size

// Key is a 160-bit content digest.
type Key [Size]byte

// Sum returns the content digest of payload.
func Sum(payload []byte) Key {
	h := ripemd160.New()
	h.Write(payload) //nolint:errcheck // ripemd160.digest.Write never errors
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Coords reinterprets the digest as five big-endian uint32 words, the
// coordinate it would address in a sparse 5-D side-store array per
// spec's primary design. Cyclus's ncio engine does not implement that
// sparse addressing (see archive/sidestore.go); Coords is kept so the
// digest semantics described by the design remain observable/testable
// even though the on-disk side store uses the documented fallback
// layout instead.
func (k Key) Coords() [5]uint32 {
	var c [5]uint32
	for i := 0; i < 5; i++ {
		c[i] = uint32(k[i*4])<<24 | uint32(k[i*4+1])<<16 | uint32(k[i*4+2])<<8 | uint32(k[i*4+3])
	}
	return c
}

func (k Key) String() string {
	const hex = "0123456789abcdef"
	out := make([]byte, Size*2)
	for i, b := range k {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0xf]
	}
	return string(out)
}
