package table

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/errors"
)

// ReadCSV parses a CSV document with a header row into a dataset.
//
// Each column gets the narrowest type that fits every non-empty cell:
// integer, real, boolean, then string. Numeric cells become float64 and
// empty cells become nil. Short records are padded with nil.
func ReadCSV(r io.Reader, id string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse csv")
	}
	if len(recs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "empty csv")
	}

	header := recs[0]
	body := recs[1:]
	fields := make([]Field, len(header))
	for i, name := range header {
		fields[i] = Field{
			Name:  strings.TrimSpace(name),
			Type:  inferType(body, i),
			Index: i,
		}
	}

	rows := make([]Row, len(body))
	for ri, rec := range body {
		row := make(Row, len(fields))
		for ci, f := range fields {
			if ci < len(rec) {
				row[ci] = parseCell(rec[ci], f.Type)
			}
		}
		rows[ri] = row
	}

	return &Dataset{
		ID:     id,
		Fields: fields,
		Rows:   rows,
		Hash:   cache.Hash(data),
	}, nil
}

func inferType(recs [][]string, col int) FieldType {
	isInt, isReal, isBool := true, true, true
	seen := false
	for _, rec := range recs {
		if col >= len(rec) {
			continue
		}
		s := strings.TrimSpace(rec[col])
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isReal {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isReal = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(strings.ToLower(s)); err != nil || len(s) < 4 {
				isBool = false
			}
		}
		if !isInt && !isReal && !isBool {
			return FieldString
		}
	}
	switch {
	case !seen:
		return FieldString
	case isInt:
		return FieldInteger
	case isReal:
		return FieldReal
	case isBool:
		return FieldBoolean
	}
	return FieldString
}

func parseCell(s string, t FieldType) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch t {
	case FieldInteger, FieldReal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	case FieldBoolean:
		b, _ := strconv.ParseBool(strings.ToLower(s))
		return b
	}
	return s
}
