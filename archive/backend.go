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
	"os"

	"github.com/sirupsen/logrus"

	"github.com/scopatz/cyclus"
	"github.com/scopatz/cyclus/archive/ncio"
	"github.com/scopatz/cyclus/rec"
)

// tableBackend is a rec.Backend that persists every table it sees to one
// ncio.Store-backed file: one fixed-width dataset per table, one Schema
// inferred from the first Datum recorded against it, and one pair of
// side-store datasets per VL dbtype, keyed by that dbtype's canonical name
// (e.g. "VL_STRING") and shared by every table/column that resolves to it
// (spec.md §4.5/§6: "/<VLName>Keys", "/<VLName>Vals").
type tableBackend struct {
	path    string
	file    *os.File
	store   *ncio.Store
	schemas map[string]*Schema
	sides   map[string]*sideStore // keyed by VL dbtype name, e.g. "VL_STRING", "BLOB"
	log     logrus.FieldLogger
}

// Open creates or reopens an archive file at path as a rec.Backend.
func Open(path string, log logrus.FieldLogger) (rec.Backend, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &cyclus.IOError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &cyclus.IOError{Path: path, Err: err}
	}
	var store *ncio.Store
	if info.Size() == 0 {
		store, err = ncio.Create(f)
	} else {
		store, err = ncio.Open(f, info.Size())
	}
	if err != nil {
		f.Close()
		return nil, &cyclus.IOError{Path: path, Err: err}
	}
	b := &tableBackend{
		path:    path,
		file:    f,
		store:   store,
		schemas: make(map[string]*Schema),
		sides:   make(map[string]*sideStore),
		log:     log,
	}
	return b, nil
}

// sideStoreFor returns the shared side store for a VL dbtype kind (e.g.
// "VL_STRING", "BLOB"), opening its Keys/Vals dataset pair the first time
// that kind is seen. Every table and column whose field resolves to kind
// shares this one instance, so identical content written under different
// tables/columns dedups against the same digest set.
func (b *tableBackend) sideStoreFor(kind string) (*sideStore, error) {
	if ss, ok := b.sides[kind]; ok {
		return ss, nil
	}
	ss, err := openSideStore(b.store, kind)
	if err != nil {
		return nil, err
	}
	b.sides[kind] = ss
	return ss, nil
}

// schemaLookup returns a table's already-established Schema, from cache or
// from its persisted attributes, without requiring a sample row -- used
// by the read-only query path where no Datum is available to infer from.
func (b *tableBackend) schemaLookup(table string) (*Schema, error) {
	if s, ok := b.schemas[table]; ok {
		return s, nil
	}
	s, err := decodeSchema(table, b.store)
	if err != nil {
		return nil, err
	}
	b.schemas[table] = s
	return s, nil
}

func (b *tableBackend) schemaFor(table string, fields []rec.Field) (*Schema, bool, error) {
	if s, ok := b.schemas[table]; ok {
		if !s.matches(fields) {
			return nil, false, fmt.Errorf("archive: table %q: recorded fields no longer match its established schema", table)
		}
		return s, false, nil
	}
	if decoded, err := decodeSchema(table, b.store); err == nil {
		b.schemas[table] = decoded
		return decoded, false, nil
	}
	s, err := inferSchema(table, fields)
	if err != nil {
		return nil, false, err
	}
	b.schemas[table] = s
	return s, true, nil
}

// Notify groups rows by table and appends each group as one or more
// chunks, creating the table's dataset and persisting its schema
// attributes the first time a table is seen (spec.md §4.5: "table
// creation is triggered by the first Datum written to a not-yet-existing
// table").
func (b *tableBackend) Notify(rows []*rec.Datum) error {
	byTable := make(map[string][]*rec.Datum)
	order := make([]string, 0, 4)
	for _, d := range rows {
		if d == nil || d.Table() == "" {
			continue
		}
		if _, ok := byTable[d.Table()]; !ok {
			order = append(order, d.Table())
		}
		byTable[d.Table()] = append(byTable[d.Table()], d)
	}
	for _, table := range order {
		datums := byTable[table]
		schema, created, err := b.schemaFor(table, datums[0].Fields())
		if err != nil {
			b.log.WithFields(logrus.Fields{"table": table}).WithError(err).Error("schema resolution failed")
			return &cyclus.IOError{Path: b.path, Err: err}
		}
		if created {
			attrs := schema.encode()
			attrs["cyclus_colnames"] = encodeNames(schema.Cols)
			if _, err := b.store.EnsureDataset(table, schema.width, attrs); err != nil {
				return &cyclus.IOError{Path: b.path, Err: err}
			}
		}
		buf := make([]byte, 0, schema.width*len(datums))
		for _, d := range datums {
			row, err := b.encodeRow(schema, d.Fields())
			if err != nil {
				b.log.WithFields(logrus.Fields{"table": table}).WithError(err).Error("row encode failed")
				return &cyclus.IOError{Path: b.path, Err: err}
			}
			buf = append(buf, row...)
		}
		if err := b.store.AppendRows(table, buf); err != nil {
			b.log.WithFields(logrus.Fields{"table": table, "rows": len(datums)}).WithError(err).Error("append failed")
			return &cyclus.IOError{Path: b.path, Err: err}
		}
	}
	return nil
}

// Flush persists the table of contents footer without writing any new
// rows (Notify has already appended everything it was given).
func (b *tableBackend) Flush() error {
	return b.store.Close()
}

// Close flushes and releases the underlying file.
func (b *tableBackend) Close() error {
	if err := b.store.Close(); err != nil {
		return err
	}
	return b.file.Close()
}
