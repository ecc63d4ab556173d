package app

import (
	"sort"

	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

// BulkValueResolver fills a row's fields from per-column statistics
type BulkValueResolver struct {
	reserved map[string]bool
}

// NewBulkValueResolver creates a resolver that never touches the reserved fields.
// A nil list reserves id and rowId.
func NewBulkValueResolver(reserved []string) *BulkValueResolver {
	if reserved == nil {
		reserved = []string{"id", "rowId"}
	}
	set := make(map[string]bool, len(reserved))
	for _, f := range reserved {
		set[f] = true
	}
	return &BulkValueResolver{reserved: set}
}

// Resolve returns a copy of row with every column that has a usable statistic for kind
// set to that statistic, and the number of fields whose value changed. Columns are
// visited in name order. Array columns and unmatched type/kind pairs are left as they were.
func (r *BulkValueResolver) Resolve(row dataset.Row, stats map[string]profiling.ColumnStatistics, kind profiling.StatKind) (dataset.Row, int) {
	out := row.Clone()

	columns := make([]string, 0, len(stats))
	for c := range stats {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	updated := 0
	for _, column := range columns {
		if r.reserved[column] {
			continue
		}
		v, ok := FillValue(stats[column], kind)
		if !ok {
			continue
		}
		if current, exists := out[column]; exists && current.Equal(v) {
			continue
		}
		out[column] = v
		updated++
	}
	return out, updated
}

// FillValue picks the value a column's statistics yield for kind
func FillValue(s profiling.ColumnStatistics, kind profiling.StatKind) (dataset.CellValue, bool) {
	switch {
	case s.Type.IsNumeric():
		return numericFill(s.Numeric, kind)
	case s.Type == profiling.TypeBoolean:
		if s.Boolean != nil && (kind == profiling.StatMostCommon || kind == profiling.StatMode) {
			return dataset.NewBool(s.Boolean.MostCommon), true
		}
	case s.Type.IsTemporal():
		return temporalFill(s.Temporal, kind)
	case s.Type == profiling.TypeTime:
		if kind == profiling.StatMostCommon {
			return topFrequency(s.Frequency)
		}
	case s.Type.IsStringLike():
		if kind == profiling.StatMostCommon || kind == profiling.StatMode {
			return topFrequency(s.Frequency)
		}
	}
	return dataset.CellValue{}, false
}

func numericFill(n *profiling.NumericStats, kind profiling.StatKind) (dataset.CellValue, bool) {
	if n == nil {
		return dataset.CellValue{}, false
	}
	switch kind {
	case profiling.StatMean:
		return dataset.NewNumber(n.Mean), true
	case profiling.StatMedian:
		return dataset.NewNumber(n.Median), true
	case profiling.StatMode:
		return dataset.NewNumber(n.Mode), true
	}
	return dataset.CellValue{}, false
}

func temporalFill(t *profiling.TemporalStats, kind profiling.StatKind) (dataset.CellValue, bool) {
	if t == nil {
		return dataset.CellValue{}, false
	}
	switch kind {
	case profiling.StatEarliest:
		return dataset.NewTime(t.Earliest), true
	case profiling.StatLatest:
		return dataset.NewTime(t.Latest), true
	case profiling.StatMostCommon:
		if len(t.MostFrequent) > 0 {
			return dataset.NewTime(t.MostFrequent[0].Instant), true
		}
	}
	return dataset.CellValue{}, false
}

func topFrequency(f *profiling.FrequencyStats) (dataset.CellValue, bool) {
	top, ok := f.Top()
	if !ok {
		return dataset.CellValue{}, false
	}
	return dataset.NewString(top.Value), true
}
