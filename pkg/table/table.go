// Package table holds the tabular datasets a point layer reads from.
//
// A [Dataset] is a list of [Field] descriptors plus rows of loosely typed
// values addressed by column index. Rows are immutable once loaded: layers
// wrap them, they never copy or edit them.
//
// Loaders exist for CSV ([ReadCSV]) and GeoJSON ([ReadGeoJSON]). Both infer
// field types and turn numeric columns into float64 so position accessors can
// test finiteness without parsing.
package table

import (
	"fmt"
	"math"
	"strconv"
)

// FieldType is the inferred type of a column.
type FieldType string

// Field types.
const (
	FieldReal    FieldType = "real"
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
)

// IsNumeric reports whether values of this type are float64.
func (t FieldType) IsNumeric() bool {
	return t == FieldReal || t == FieldInteger
}

// Field describes one column.
type Field struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	Index int       `json:"index"`
}

// Row is one record. Values are float64, string, bool, or nil.
type Row []any

// At returns the value at column idx, or nil when idx is out of range.
func (r Row) At(idx int) any {
	if idx < 0 || idx >= len(r) {
		return nil
	}
	return r[idx]
}

// Dataset is a loaded table.
type Dataset struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Fields []Field `json:"fields"`
	Rows   []Row   `json:"-"`
	// Hash is the content hash of the source the dataset was loaded from.
	Hash string `json:"hash,omitempty"`
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// FieldByName looks a field up by exact name.
func (d *Dataset) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Column returns every value of column idx in row order.
func (d *Dataset) Column(idx int) []any {
	out := make([]any, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.At(idx)
	}
	return out
}

// AllIndices returns [0, 1, ..., Len()-1], the filtered-index sequence of an
// unfiltered dataset.
func (d *Dataset) AllIndices() []int {
	idx := make([]int, d.Len())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Float converts a cell value to float64. Non-numeric values (strings, bools,
// nil) return NaN, so callers only need a finiteness check.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return math.NaN()
	}
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String formats a cell value for labels. Nil renders as the empty string.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// IsNull reports whether v counts as "no value" for channel encoding:
// nil, or a NaN number.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	}
	return false
}
