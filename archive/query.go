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

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"

	"github.com/scopatz/cyclus"
)

// Reader opens an existing archive file for querying, sharing
// tableBackend's schema/side-store machinery with the write path. The file
// is opened read-write through Open (and created if absent); resolving a VL
// column creates that kind's side-store datasets if they are missing, and
// Close rewrites the footer.
type Reader struct {
	b *tableBackend
}

// OpenReader opens path for querying. The returned Reader does not
// support recording and should not be registered with a rec.Recorder.
func OpenReader(path string, log logrus.FieldLogger) (*Reader, error) {
	backend, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	return &Reader{b: backend.(*tableBackend)}, nil
}

// Close releases the reader's underlying file.
func (r *Reader) Close() error { return r.b.Close() }

// QueryResult is the ordered list of rows matching a Query, each row a
// column-name -> decoded-value map in the table's schema column order.
type QueryResult struct {
	Table string
	Cols  []string
	Rows  []map[string]interface{}
}

// Query evaluates condition, a govaluate boolean expression over the
// table's column names (e.g. `Quantity > 10 && Units == "kg"`), against
// every row of table, in insertion order, and returns the rows for which
// it evaluates true. An empty condition matches every row.
//
// govaluate's parameter binding generalizes spec.md §4.5's "conjunction
// of per-field conditions" into a single boolean expression, the same
// dynamic-condition idiom the teacher uses Knetic/govaluate for in its
// own data-quality rule evaluation.
func (r *Reader) Query(table, condition string) (*QueryResult, error) {
	schema, err := r.b.schemaLookup(table)
	if err != nil {
		return nil, fmt.Errorf("archive: query table %q: %w", table, err)
	}
	var expr *govaluate.EvaluableExpression
	if condition != "" {
		expr, err = govaluate.NewEvaluableExpression(condition)
		if err != nil {
			return nil, &cyclus.ValueError{Context: "query", Err: err}
		}
	}
	res := &QueryResult{Table: table, Cols: schema.Cols}
	n := r.b.store.NumRows(table)
	rowBytes, err := r.b.store.ReadRows(table, 0, n)
	if err != nil {
		return nil, &cyclus.IOError{Path: r.b.path, Err: err}
	}
	for off := 0; off+schema.width <= len(rowBytes); off += schema.width {
		decoded, err := r.b.decodeRow(schema, rowBytes[off:off+schema.width])
		if err != nil {
			return nil, err
		}
		if expr == nil {
			res.Rows = append(res.Rows, decoded)
			continue
		}
		ok, err := expr.Evaluate(govaluateParams(decoded))
		if err != nil {
			return nil, &cyclus.ValueError{Context: "query", Err: err}
		}
		if truth, _ := ok.(bool); truth {
			res.Rows = append(res.Rows, decoded)
		}
	}
	return res, nil
}

// govaluateParams widens int64 and float32 columns (DbInt and DbFloat) to
// float64. govaluate parses every numeric literal in an expression as
// float64 and its comparison/arithmetic operators type-assert both sides to
// float64, so a narrower numeric parameter next to a literal like "5" would
// otherwise fail to evaluate; this keeps QueryResult.Rows itself in the
// row's native Go types.
func govaluateParams(decoded map[string]interface{}) map[string]interface{} {
	params := make(map[string]interface{}, len(decoded))
	for k, v := range decoded {
		switch n := v.(type) {
		case int64:
			params[k] = float64(n)
		case float32:
			params[k] = float64(n)
		default:
			params[k] = v
		}
	}
	return params
}

// Schema returns the persisted column/type schema of table.
func (r *Reader) Schema(table string) (*Schema, error) {
	return decodeSchema(table, r.b.store)
}
