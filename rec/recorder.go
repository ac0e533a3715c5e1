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

package rec

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDumpCount is the default number of rows buffered before an
// automatic flush.
const DefaultDumpCount = 500

// Backend receives batches of Datums from a Recorder. Notify is called
// once per dump (automatic, on Flush, and on Close) with the full buffered
// batch; a backend groups rows by table internally (spec.md §4.5).
type Backend interface {
	Notify(rows []*Datum) error
	Flush() error
	Close() error
}

// Recorder is a row journal: it stamps every row with a simulation id,
// buffers up to DumpCount rows, and fans them out to every registered
// Backend in registration order, synchronously, once the buffer fills or
// Flush/Close is called (spec.md §4.4).
//
// Recorder pre-allocates its entire ring of Datums up front: in a
// 10^5-10^6 step simulation heap churn from per-event allocation
// dominates, so the ring is sized once and each Datum is reset and reused
// rather than freed and reallocated.
type Recorder struct {
	simID     uuid.UUID
	dumpCount int
	ring      []*Datum
	index     int
	backends  []Backend
	closed    bool
	log       logrus.FieldLogger
}

// New creates a Recorder with the given dump count and simulation id. If
// log is nil, logrus.StandardLogger() is used, matching the teacher's own
// `Log logrus.FieldLogger` injected-logger idiom.
func New(dumpCount int, simID uuid.UUID, log logrus.FieldLogger) *Recorder {
	if dumpCount <= 0 {
		dumpCount = DefaultDumpCount
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Recorder{simID: simID, dumpCount: dumpCount, log: log}
	r.ring = make([]*Datum, dumpCount)
	for i := range r.ring {
		r.ring[i] = &Datum{rec: r, fields: []Field{simIDField(simID)}}
	}
	return r
}

// SimID returns the simulation id stamped on every row.
func (r *Recorder) SimID() uuid.UUID { return r.simID }

// DumpCount returns the configured automatic-flush threshold.
func (r *Recorder) DumpCount() int { return r.dumpCount }

// RegisterBackend adds b to the set of backends notified on every dump,
// appended after any already-registered backends (dispatch is always in
// registration order).
func (r *Recorder) RegisterBackend(b Backend) {
	r.backends = append(r.backends, b)
}

// NewDatum returns a borrowed Datum for table, reset and pre-stamped with
// SimId. Index advances; if the buffer is now full, the next call to
// Datum.Record triggers the automatic flush (the index is advanced here,
// the notify/reset decision lives in addDatum, mirroring the upstream
// split between NewDatum and AddDatum/RecordDatum -- see DESIGN.md).
func (r *Recorder) NewDatum(table string) (*Datum, error) {
	if r.closed {
		return nil, fmt.Errorf("cyclus/rec: recorder is closed")
	}
	d := r.ring[r.index]
	d.table = table
	d.fields = d.fields[:1] // keep the pre-filled SimId cell
	r.index++
	return d, nil
}

func (r *Recorder) addDatum(d *Datum) error {
	if r.closed {
		return fmt.Errorf("cyclus/rec: recorder is closed")
	}
	if r.index >= len(r.ring) {
		return r.notifyBackends()
	}
	return nil
}

func (r *Recorder) notifyBackends() error {
	batch := r.ring
	r.index = 0
	for _, b := range r.backends {
		if err := b.Notify(batch); err != nil {
			r.log.WithFields(logrus.Fields{"dump_count": len(batch)}).WithError(err).Error("backend notify failed")
			return err
		}
	}
	return nil
}

// Flush dispatches the partially filled buffer (length == current index)
// to every backend and resets the index.
func (r *Recorder) Flush() error {
	if r.closed {
		return fmt.Errorf("cyclus/rec: recorder is closed")
	}
	batch := r.ring[:r.index]
	r.index = 0
	for _, b := range r.backends {
		if err := b.Notify(batch); err != nil {
			return err
		}
		if err := b.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the partial buffer and detaches every backend. After
// Close, further NewDatum/Record calls fail immediately.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	if err := r.Flush(); err != nil {
		return err
	}
	for _, b := range r.backends {
		if err := b.Close(); err != nil {
			return err
		}
	}
	r.backends = nil
	r.closed = true
	return nil
}
