package profiling

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"colprofile/domain/core"
)

// DataType is the semantic type inferred for a column
type DataType string

const (
	TypeInteger   DataType = "integer"
	TypeFloat     DataType = "float"
	TypeString    DataType = "string"
	TypeCharacter DataType = "character"
	TypeBoolean   DataType = "boolean"
	TypeDate      DataType = "date"
	TypeTime      DataType = "time"
	TypeDateTime  DataType = "datetime"
	TypeTimestamp DataType = "timestamp"
	TypeArray     DataType = "array"
	TypeCategory  DataType = "category"
	TypeObject    DataType = "object"
	TypeEmpty     DataType = "empty"
)

// AllDataTypes lists every DataType in declaration order
var AllDataTypes = []DataType{
	TypeInteger, TypeFloat, TypeString, TypeCharacter, TypeBoolean, TypeDate, TypeTime,
	TypeDateTime, TypeTimestamp, TypeArray, TypeCategory, TypeObject, TypeEmpty,
}

// ParseDataType accepts any DataType name, case-insensitively
func ParseDataType(s string) (DataType, error) {
	want := DataType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range AllDataTypes {
		if t == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownDataType, s)
}

// IsNumeric reports integer and float columns
func (t DataType) IsNumeric() bool { return t == TypeInteger || t == TypeFloat }

// IsTemporal reports columns whose values are instants
func (t DataType) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime || t == TypeTimestamp
}

// IsStringLike reports columns summarized by value frequency
func (t DataType) IsStringLike() bool {
	switch t {
	case TypeString, TypeCharacter, TypeTime, TypeCategory, TypeObject:
		return true
	}
	return false
}

// Detection is the outcome of type inference for one column
type Detection struct {
	Type DataType `json:"type"`
	// IsBinary marks integer columns holding only 0 and 1. The column stays numeric;
	// this is a display hint.
	IsBinary bool `json:"is_binary,omitempty"`
}

// ColumnStatistics is the per-column statistics record. Exactly one of the typed
// sections is set, matching Type; an empty or all-missing column sets none.
type ColumnStatistics struct {
	Column   string   `json:"column"`
	Type     DataType `json:"type"`
	IsBinary bool     `json:"is_binary,omitempty"`
	Total    int      `json:"total"`
	Missing  int      `json:"missing"`
	Count    int      `json:"count"`

	Numeric   *NumericStats   `json:"numeric,omitempty"`
	Frequency *FrequencyStats `json:"frequency,omitempty"`
	Boolean   *BooleanStats   `json:"boolean,omitempty"`
	Temporal  *TemporalStats  `json:"temporal,omitempty"`
	Array     *ArrayStats     `json:"array,omitempty"`
}

// MissingRate is Missing/Total, or 0 for an empty column
func (s ColumnStatistics) MissingRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Missing) / float64(s.Total)
}

// NumericStats holds descriptive statistics for integer and float columns.
// Variance and Std are population figures (divisor n).
type NumericStats struct {
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	Mode     float64   `json:"mode"`
	Std      float64   `json:"std"`
	Variance float64   `json:"variance"`
	Skewness float64   `json:"skewness"`
	Kurtosis float64   `json:"kurtosis"` // excess
	Q1       float64   `json:"q1"`
	Q3       float64   `json:"q3"`
	IQR      float64   `json:"iqr"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers"`
	// Unparsable counts non-missing cells that did not read as finite numbers.
	Unparsable int `json:"unparsable,omitempty"`
}

// LowerFence is the lowest value not flagged as an outlier for fence factor k
func (n NumericStats) LowerFence(k float64) float64 { return n.Q1 - k*n.IQR }

// UpperFence is the highest value not flagged as an outlier for fence factor k
func (n NumericStats) UpperFence(k float64) float64 { return n.Q3 + k*n.IQR }

// ValueCount represents a value and its frequency
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyStats summarizes string-like columns
type FrequencyStats struct {
	MostFrequent []ValueCount `json:"most_frequent"`
	UniqueCount  int          `json:"unique_count"`
}

// Top returns the most frequent entry, if any
func (f *FrequencyStats) Top() (ValueCount, bool) {
	if f == nil || len(f.MostFrequent) == 0 {
		return ValueCount{}, false
	}
	return f.MostFrequent[0], true
}

// BooleanStats summarizes boolean columns. Percentages are in [0, 100].
type BooleanStats struct {
	TrueCount       int     `json:"true_count"`
	FalseCount      int     `json:"false_count"`
	TruePercentage  float64 `json:"true_percentage"`
	FalsePercentage float64 `json:"false_percentage"`
	MostCommon      bool    `json:"most_common"`
}

// InstantCount is a frequency entry keyed by the instant's ISO-8601 form
type InstantCount struct {
	Value   string    `json:"value"`
	Instant time.Time `json:"instant"`
	Count   int       `json:"count"`
}

// TemporalStats summarizes date, datetime and timestamp columns
type TemporalStats struct {
	Earliest     time.Time      `json:"earliest"`
	Latest       time.Time      `json:"latest"`
	MostFrequent []InstantCount `json:"most_frequent"`
	Unparsable   int            `json:"unparsable,omitempty"`
}

// ArrayStats summarizes array columns by element count
type ArrayStats struct {
	AverageLength float64 `json:"average_length"`
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
}

// DatasetSummary is the coarse per-dataset classification of columns
type DatasetSummary struct {
	RowCount           int      `json:"row_count"`
	ColumnCount        int      `json:"column_count"`
	MissingCells       int      `json:"missing_cells"`
	NumericColumns     []string `json:"numeric_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
	TemporalColumns    []string `json:"temporal_columns"`
}

// DatasetProfile is everything computed for one dataset snapshot
type DatasetProfile struct {
	DatasetID   core.DatasetID     `json:"dataset_id"`
	Hash        core.ContentHash   `json:"hash"`
	Columns     []string           `json:"columns"`
	Statistics  []ColumnStatistics `json:"statistics"`
	Summary     DatasetSummary     `json:"summary"`
	Correlation *CorrelationResult `json:"correlation,omitempty"`
	ComputedAt  core.Timestamp     `json:"computed_at"`
}

// StatisticsByColumn indexes the profile's statistics by column name
func (p *DatasetProfile) StatisticsByColumn() map[string]ColumnStatistics {
	out := make(map[string]ColumnStatistics, len(p.Statistics))
	for _, s := range p.Statistics {
		out[s.Column] = s
	}
	return out
}

// Column returns one column's statistics
func (p *DatasetProfile) Column(name string) (ColumnStatistics, bool) {
	for _, s := range p.Statistics {
		if s.Column == name {
			return s, true
		}
	}
	return ColumnStatistics{}, false
}

// Clone returns a deep copy of the profile
func (p *DatasetProfile) Clone() *DatasetProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.Columns = slices.Clone(p.Columns)
	out.Statistics = slices.Clone(p.Statistics)
	for i, s := range out.Statistics {
		out.Statistics[i] = s.Clone()
	}
	out.Summary.NumericColumns = slices.Clone(p.Summary.NumericColumns)
	out.Summary.CategoricalColumns = slices.Clone(p.Summary.CategoricalColumns)
	out.Summary.TemporalColumns = slices.Clone(p.Summary.TemporalColumns)
	if p.Correlation != nil {
		c := p.Correlation.Clone()
		out.Correlation = &c
	}
	return &out
}

// Clone returns a copy of s that shares no memory with it
func (s ColumnStatistics) Clone() ColumnStatistics {
	if s.Numeric != nil {
		n := *s.Numeric
		n.Outliers = slices.Clone(s.Numeric.Outliers)
		s.Numeric = &n
	}
	if s.Frequency != nil {
		f := *s.Frequency
		f.MostFrequent = slices.Clone(s.Frequency.MostFrequent)
		s.Frequency = &f
	}
	if s.Boolean != nil {
		b := *s.Boolean
		s.Boolean = &b
	}
	if s.Temporal != nil {
		t := *s.Temporal
		t.MostFrequent = slices.Clone(s.Temporal.MostFrequent)
		s.Temporal = &t
	}
	if s.Array != nil {
		a := *s.Array
		s.Array = &a
	}
	return s
}
