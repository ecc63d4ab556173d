package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the physical storage kind of a cell
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindTime
	KindArray
)

var kindNames = [...]string{"null", "bool", "number", "string", "time", "array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CellValue is a single cell of a row. Exactly the field matching Kind is meaningful.
type CellValue struct {
	Kind   Kind
	Bool   bool
	Number float64
	Text   string
	Time   time.Time
	Array  []CellValue
}

// NewNull creates a null cell
func NewNull() CellValue { return CellValue{Kind: KindNull} }

// NewBool creates a boolean cell
func NewBool(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

// NewNumber creates a numeric cell
func NewNumber(n float64) CellValue { return CellValue{Kind: KindNumber, Number: n} }

// NewString creates a string cell. The empty string is kept as a string cell so that
// missing-value accounting can tell "" apart from null when it needs to.
func NewString(s string) CellValue { return CellValue{Kind: KindString, Text: s} }

// NewTime creates a date/time cell
func NewTime(t time.Time) CellValue { return CellValue{Kind: KindTime, Time: t} }

// NewArray creates an array cell
func NewArray(values ...CellValue) CellValue {
	if values == nil {
		values = []CellValue{}
	}
	return CellValue{Kind: KindArray, Array: values}
}

// IsNull reports whether the cell is null
func (v CellValue) IsNull() bool { return v.Kind == KindNull }

// IsMissing reports whether the cell counts as missing: null or the empty string.
func (v CellValue) IsMissing() bool {
	return v.Kind == KindNull || (v.Kind == KindString && v.Text == "")
}

// String returns the display form of the cell. Frequency tables for non-numeric
// columns key on this form.
func (v CellValue) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindString:
		return v.Text
	case KindTime:
		return v.Time.UTC().Format(time.RFC3339)
	case KindArray:
		parts := make([]string, len(v.Array))
		for i, el := range v.Array {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return ""
}

// Equal reports deep equality of two cells
func (v CellValue) Equal(o CellValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Number == o.Number
	case KindString:
		return v.Text == o.Text
	case KindTime:
		return v.Time.Equal(o.Time)
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the cell as its natural JSON value; times become RFC 3339 strings.
func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindString:
		return json.Marshal(v.Text)
	case KindTime:
		return json.Marshal(v.Time.UTC().Format(time.RFC3339Nano))
	case KindArray:
		return json.Marshal(v.Array)
	}
	return nil, fmt.Errorf("cannot encode cell of %s", v.Kind)
}

// UnmarshalJSON decodes any JSON scalar or array. Objects are rejected.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = NewNull()
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = NewBool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewString(s)
	case '[':
		var arr []CellValue
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*v = NewArray(arr...)
	case '{':
		return fmt.Errorf("object cells are not supported")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NewNumber(n)
	}
	return nil
}
