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

// Package ncio is a small columnar, chunked, attribute-carrying dataset
// container, architecturally modeled on the teacher's vendored
// bitbucket.org/ctessum/cdf package: a Header made of named Datasets, each
// with a fixed row width and a record (unlimited, append-only) dimension,
// plus integer-list (int32) attributes attached to a dataset.
//
// Unlike cdf, whose Header is declared once up front and then Define()'d
// immutable, ncio's table-of-contents is allowed to grow: Cyclus tables
// and variable-length side-store datasets are discovered incrementally,
// one at a time, as the first Datum for each is written (spec's "table
// creation is triggered by the first Datum written to a not-yet-existing
// table"), so the TOC is rewritten as a footer each time it changes,
// rather than fixed once at file creation.
package ncio

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// ReaderWriterAt is the underlying storage for an ncio Store: the same
// shape as cdf.ReaderWriterAt.
type ReaderWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// chunk is a contiguous run of rows written as a single append -- the
// atomic unit of a dataset's growth and the natural unit for query
// iteration (spec glossary: "Chunk").
type chunk struct {
	Offset int64
	Rows   int
}

// dataset is one named, fixed-row-width, chunked column store plus its
// attributes -- the ncio analogue of a cdf record variable with its
// attached attributes.
type dataset struct {
	Name     string
	RowWidth int
	Chunks   []chunk
	IntAttrs map[string][]int32
}

func (d *dataset) numRows() int {
	n := 0
	for _, c := range d.Chunks {
		n += c.Rows
	}
	return n
}

// toc is the whole-file table of contents, gob-encoded into a footer at
// Close/whenever the schema changes. Using encoding/gob for this small
// self-describing index mirrors the teacher's own internal/hash package,
// which gob-encodes values for content hashing.
type toc struct {
	Datasets map[string]*dataset
}

// Store is an open ncio container file.
type Store struct {
	rw  ReaderWriterAt
	toc *toc
	end int64 // offset of the next free byte
}

const footerMagic = "NCIO1\x00\x00\x00"

// Create initializes a new, empty Store backed by rw.
func Create(rw ReaderWriterAt) (*Store, error) {
	s := &Store{rw: rw, toc: &toc{Datasets: make(map[string]*dataset)}, end: 0}
	if err := s.writeFooter(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open reads the footer of an existing Store backed by rw.
func Open(rw ReaderWriterAt, size int64) (*Store, error) {
	if size < 16 {
		return Create(rw)
	}
	var trailer [16]byte
	if _, err := rw.ReadAt(trailer[:], size-16); err != nil {
		return nil, fmt.Errorf("ncio: reading trailer: %w", err)
	}
	footerOff := int64(beUint64(trailer[8:16]))
	footerLen := size - 16 - footerOff
	if footerLen < 0 {
		return nil, fmt.Errorf("ncio: corrupt trailer")
	}
	buf := make([]byte, footerLen)
	if _, err := rw.ReadAt(buf, footerOff); err != nil {
		return nil, fmt.Errorf("ncio: reading footer: %w", err)
	}
	var t toc
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&t); err != nil {
		return nil, fmt.Errorf("ncio: decoding footer: %w", err)
	}
	return &Store{rw: rw, toc: &t, end: footerOff}, nil
}

func (s *Store) writeFooter() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.toc); err != nil {
		return fmt.Errorf("ncio: encoding footer: %w", err)
	}
	footerOff := s.end
	if _, err := s.rw.WriteAt(buf.Bytes(), footerOff); err != nil {
		return fmt.Errorf("ncio: writing footer: %w", err)
	}
	var trailer [16]byte
	putBEUint64(trailer[0:8], []byte(footerMagic))
	putBEUint64(trailer[8:16], uint64Bytes(uint64(footerOff)))
	if _, err := s.rw.WriteAt(trailer[:], footerOff+int64(buf.Len())); err != nil {
		return fmt.Errorf("ncio: writing trailer: %w", err)
	}
	return nil
}

// EnsureDataset returns the dataset named name, creating it with the given
// row width and integer attributes if it doesn't already exist. The
// second return value reports whether the dataset was just created.
func (s *Store) EnsureDataset(name string, rowWidth int, intAttrs map[string][]int32) (created bool, err error) {
	if d, ok := s.toc.Datasets[name]; ok {
		if d.RowWidth != rowWidth {
			return false, fmt.Errorf("ncio: dataset %q row width is fixed at %d, got %d", name, d.RowWidth, rowWidth)
		}
		return false, nil
	}
	s.toc.Datasets[name] = &dataset{Name: name, RowWidth: rowWidth, IntAttrs: intAttrs}
	return true, s.writeFooter()
}

// IntAttr returns the named integer-list attribute of a dataset, or nil if
// absent.
func (s *Store) IntAttr(dsName, attr string) []int32 {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return nil
	}
	return d.IntAttrs[attr]
}

// MaxChunkRows bounds how many rows a single AppendRows call packs into
// one chunk entry, matching the teacher's own cdf-adjacent on-disk
// archive's fixed 1000-row chunk size (spec.md §6).
const MaxChunkRows = 1000

// AppendRows appends len(rows)/rowWidth rows (rows must be a multiple of
// the dataset's row width) to dsName as one or more chunks of at most
// MaxChunkRows rows each.
func (s *Store) AppendRows(dsName string, rows []byte) error {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return fmt.Errorf("ncio: no such dataset %q", dsName)
	}
	if d.RowWidth == 0 || len(rows)%d.RowWidth != 0 {
		return fmt.Errorf("ncio: dataset %q: row buffer length %d is not a multiple of row width %d", dsName, len(rows), d.RowWidth)
	}
	n := len(rows) / d.RowWidth
	for off := 0; off < n; {
		take := n - off
		if take > MaxChunkRows {
			take = MaxChunkRows
		}
		start := off * d.RowWidth
		end := (off + take) * d.RowWidth
		if _, err := s.rw.WriteAt(rows[start:end], s.end); err != nil {
			return fmt.Errorf("ncio: appending to %q: %w", dsName, err)
		}
		d.Chunks = append(d.Chunks, chunk{Offset: s.end, Rows: take})
		s.end += int64(end - start)
		off += take
	}
	return s.writeFooter()
}

// NumRows returns the number of rows currently stored in dsName.
func (s *Store) NumRows(dsName string) int {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return 0
	}
	return d.numRows()
}

// RowWidth returns the fixed row width of dsName, or 0 if it doesn't exist.
func (s *Store) RowWidth(dsName string) int {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return 0
	}
	return d.RowWidth
}

// HasDataset reports whether dsName has been created.
func (s *Store) HasDataset(dsName string) bool {
	_, ok := s.toc.Datasets[dsName]
	return ok
}

// ReadRows reads count logical rows starting at logical row start from
// dsName, walking chunks in order (spec.md: "streams the table in
// chunk-sized passes").
func (s *Store) ReadRows(dsName string, start, count int) ([]byte, error) {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return nil, fmt.Errorf("ncio: no such dataset %q", dsName)
	}
	out := make([]byte, 0, count*d.RowWidth)
	row := 0
	remainingStart := start
	remainingCount := count
	for _, c := range d.Chunks {
		if remainingCount <= 0 {
			break
		}
		if remainingStart >= c.Rows {
			remainingStart -= c.Rows
			row += c.Rows
			continue
		}
		skip := remainingStart
		take := c.Rows - skip
		if take > remainingCount {
			take = remainingCount
		}
		buf := make([]byte, take*d.RowWidth)
		if _, err := s.rw.ReadAt(buf, c.Offset+int64(skip*d.RowWidth)); err != nil {
			return nil, fmt.Errorf("ncio: reading %q chunk at %d: %w", dsName, c.Offset, err)
		}
		out = append(out, buf...)
		remainingCount -= take
		remainingStart = 0
	}
	return out, nil
}

// ForEachChunk streams dsName chunk by chunk, calling fn with each chunk's
// raw bytes, stopping early if fn returns false or an error.
func (s *Store) ForEachChunk(dsName string, fn func(rows []byte) (bool, error)) error {
	d, ok := s.toc.Datasets[dsName]
	if !ok {
		return fmt.Errorf("ncio: no such dataset %q", dsName)
	}
	for _, c := range d.Chunks {
		buf := make([]byte, c.Rows*d.RowWidth)
		if _, err := s.rw.ReadAt(buf, c.Offset); err != nil {
			return fmt.Errorf("ncio: reading %q chunk at %d: %w", dsName, c.Offset, err)
		}
		cont, err := fn(buf)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// Close persists the table of contents footer.
func (s *Store) Close() error {
	return s.writeFooter()
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func putBEUint64(dst, src []byte) { copy(dst, src) }

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
