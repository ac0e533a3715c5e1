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

import "github.com/scopatz/cyclus"

// materialRef holds a Material plus its links to the next and previous
// items in a materialList, the same linked-list node shape as the
// teacher's cellRef (list.go), specialized from a neighbor-graph cell to a
// FIFO queue entry.
type materialRef struct {
	*cyclus.Material
	next, previous *materialRef
}

// materialList is a doubly linked, insertion-ordered list of Materials
// with an O(1)-lookup index, adapted from the teacher's cellList.
type materialList struct {
	first, last *materialRef
	len         int
	index       map[*cyclus.Material]*materialRef
}

func (l *materialList) array() []*cyclus.Material {
	out := make([]*cyclus.Material, l.len)
	r := l.first
	for i := 0; i < l.len; i++ {
		out[i] = r.Material
		r = r.next
	}
	return out
}

// add appends m to the end of the list (insertion order == FIFO order).
func (l *materialList) add(m *cyclus.Material) *materialRef {
	r := &materialRef{Material: m, previous: l.last}
	if l.last != nil {
		l.last.next = r
	}
	l.last = r
	if l.first == nil {
		l.first = r
	}
	l.len++
	if l.index == nil {
		l.index = make(map[*cyclus.Material]*materialRef)
	}
	l.index[m] = r
	return r
}

// removeFront removes and returns the oldest Material in the list.
func (l *materialList) removeFront() *cyclus.Material {
	r := l.first
	if r == nil {
		return nil
	}
	l.delete(r)
	return r.Material
}

func (l *materialList) delete(r *materialRef) {
	if r.previous != nil {
		r.previous.next = r.next
	} else {
		l.first = r.next
	}
	if r.next != nil {
		r.next.previous = r.previous
	} else {
		l.last = r.previous
	}
	r.next, r.previous = nil, nil
	l.len--
	delete(l.index, r.Material)
}
