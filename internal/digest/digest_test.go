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

package digest

import "testing"

func TestSumIsDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Errorf("Sum should be deterministic: %s != %s", a, b)
	}
}

func TestSumDistinguishesPayloads(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("world"))
	if a == b {
		t.Error("Sum of distinct payloads should not collide")
	}
}

func TestStringLength(t *testing.T) {
	k := Sum([]byte("x"))
	if have, want := len(k.String()), Size*2; have != want {
		t.Errorf("hex string length: have %d, want %d", have, want)
	}
}

func TestCoordsCoversWholeDigest(t *testing.T) {
	k := Sum([]byte("x"))
	c := k.Coords()
	var rebuilt Key
	for i, word := range c {
		rebuilt[i*4] = byte(word >> 24)
		rebuilt[i*4+1] = byte(word >> 16)
		rebuilt[i*4+2] = byte(word >> 8)
		rebuilt[i*4+3] = byte(word)
	}
	if rebuilt != k {
		t.Errorf("Coords should be a lossless reinterpretation of the digest: have %v, want %v", rebuilt, k)
	}
}
