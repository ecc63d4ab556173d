package dataset

import (
	"bytes"
	"sort"
	"strconv"
	"time"

	"colprofile/domain/core"
)

// Row maps a column name to its cell
type Row map[string]CellValue

// Clone returns a shallow copy of the row. Cells are values, so edits to the copy
// never reach the original.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is a fully materialized, ordered set of rows
type Dataset struct {
	ID      core.DatasetID `json:"id"`
	Columns []string       `json:"columns"`
	Rows    []Row          `json:"rows"`
}

// New builds a dataset with a fresh ID. When columns is empty the column list is
// derived from the rows: first-seen order across rows, keys within a row sorted.
func New(columns []string, rows []Row) *Dataset {
	if len(columns) == 0 {
		columns = DeriveColumns(rows)
	}
	return &Dataset{
		ID:      core.NewDatasetID(),
		Columns: columns,
		Rows:    rows,
	}
}

// DeriveColumns collects the column names present in rows in a deterministic order.
func DeriveColumns(rows []Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			columns = append(columns, k)
		}
	}
	return columns
}

// HasColumn reports whether name is in the column list
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the column's cells in row order. Rows without the key yield null.
func (d *Dataset) Values(column string) []CellValue {
	values := make([]CellValue, len(d.Rows))
	for i, row := range d.Rows {
		if v, ok := row[column]; ok {
			values[i] = v
		} else {
			values[i] = NewNull()
		}
	}
	return values
}

// Hash fingerprints the listed columns of the dataset. It is the memoization key for
// profiling results: any change to a profiled cell or to the column list changes it.
func (d *Dataset) Hash(columns []string) core.ContentHash {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(len(columns)))
	for _, c := range columns {
		buf.WriteByte(0x1f)
		writePayload(&buf, c)
	}
	buf.WriteByte(0x1e)
	for _, row := range d.Rows {
		for _, c := range columns {
			v, ok := row[c]
			if !ok {
				v = NewNull()
			}
			writeCell(&buf, v)
			buf.WriteByte(0x1f)
		}
		buf.WriteByte(0x1e)
	}
	return core.NewContentHash(buf.Bytes())
}

// writeCell appends an unambiguous encoding of v: kind tag, then a length-prefixed
// payload. Times keep full precision.
func writeCell(buf *bytes.Buffer, v CellValue) {
	buf.WriteString(v.Kind.String())
	buf.WriteByte(':')
	switch v.Kind {
	case KindArray:
		buf.WriteString(strconv.Itoa(len(v.Array)))
		buf.WriteByte('[')
		for _, el := range v.Array {
			writeCell(buf, el)
		}
		buf.WriteByte(']')
		return
	case KindNumber:
		writePayload(buf, strconv.FormatFloat(v.Number, 'g', -1, 64))
	case KindTime:
		writePayload(buf, v.Time.UTC().Format(time.RFC3339Nano))
	default:
		writePayload(buf, v.String())
	}
}

func writePayload(buf *bytes.Buffer, s string) {
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte('#')
	buf.WriteString(s)
}
