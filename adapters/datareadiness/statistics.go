package datareadiness

import (
	"sort"
	"time"

	"colprofile/adapters/datareadiness/coercer"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

// StatisticsCalculator computes the type-specific statistics record for a column
type StatisticsCalculator struct {
	coercer *coercer.TypeCoercer
	config  profiling.ProfilingConfig
}

// NewStatisticsCalculator creates a calculator. A nil coercer uses the default rules.
func NewStatisticsCalculator(c *coercer.TypeCoercer, config profiling.ProfilingConfig) *StatisticsCalculator {
	if c == nil {
		c = coercer.NewDefaultTypeCoercer()
	}
	return &StatisticsCalculator{coercer: c, config: config}
}

// Compute partitions values into missing and clean, then summarizes the clean values
// according to dataType. It never fails: degenerate input yields a record whose typed
// sections are unset.
func (s *StatisticsCalculator) Compute(column string, values []dataset.CellValue, dataType profiling.DataType) profiling.ColumnStatistics {
	clean := make([]dataset.CellValue, 0, len(values))
	for _, v := range values {
		if !v.IsMissing() {
			clean = append(clean, v)
		}
	}

	result := profiling.ColumnStatistics{
		Column:  column,
		Type:    dataType,
		Total:   len(values),
		Missing: len(values) - len(clean),
		Count:   len(clean),
	}
	if len(clean) == 0 {
		return result
	}

	switch {
	case dataType.IsNumeric():
		result.Numeric = s.computeNumeric(clean)
		result.IsBinary = dataType == profiling.TypeInteger && result.Numeric != nil && isBinary(result.Numeric)
	case dataType == profiling.TypeBoolean:
		result.Boolean = s.computeBoolean(clean)
	case dataType.IsTemporal():
		result.Temporal = s.computeTemporal(clean, dataType)
	case dataType == profiling.TypeArray:
		result.Array = computeArray(clean)
	case dataType.IsStringLike():
		result.Frequency = s.computeFrequency(clean)
	}

	return result
}

func isBinary(n *profiling.NumericStats) bool {
	return (n.Min == 0 || n.Min == 1) && (n.Max == 0 || n.Max == 1)
}

// computeFrequency ranks display strings by count
func (s *StatisticsCalculator) computeFrequency(clean []dataset.CellValue) *profiling.FrequencyStats {
	keys := make([]string, len(clean))
	for i, v := range clean {
		keys[i] = v.String()
	}
	top, unique := topFrequencies(keys, s.config.TopN)
	return &profiling.FrequencyStats{MostFrequent: top, UniqueCount: unique}
}

func (s *StatisticsCalculator) computeBoolean(clean []dataset.CellValue) *profiling.BooleanStats {
	trueCount, falseCount := 0, 0
	for _, v := range clean {
		b, ok := s.coercer.ParseBoolean(v)
		if !ok {
			continue
		}
		if b {
			trueCount++
		} else {
			falseCount++
		}
	}

	parsed := trueCount + falseCount
	if parsed == 0 {
		return nil
	}
	return &profiling.BooleanStats{
		TrueCount:       trueCount,
		FalseCount:      falseCount,
		TruePercentage:  100 * float64(trueCount) / float64(parsed),
		FalsePercentage: 100 * float64(falseCount) / float64(parsed),
		MostCommon:      trueCount >= falseCount,
	}
}

func (s *StatisticsCalculator) parseInstant(v dataset.CellValue, dataType profiling.DataType) (time.Time, bool) {
	if dataType == profiling.TypeTimestamp {
		if t, ok := s.coercer.ParseUnixSeconds(v); ok {
			return t, true
		}
	}
	if t, _, ok := s.coercer.ParseDate(v); ok {
		return t, true
	}
	return s.coercer.ParseUnixSeconds(v)
}

func (s *StatisticsCalculator) computeTemporal(clean []dataset.CellValue, dataType profiling.DataType) *profiling.TemporalStats {
	instants := make([]time.Time, 0, len(clean))
	unparsable := 0
	for _, v := range clean {
		t, ok := s.parseInstant(v, dataType)
		if !ok {
			unparsable++
			continue
		}
		instants = append(instants, t.UTC())
	}
	if len(instants) == 0 {
		return nil
	}

	stats := &profiling.TemporalStats{
		Earliest:   instants[0],
		Latest:     instants[0],
		Unparsable: unparsable,
	}

	keys := make([]string, len(instants))
	byKey := make(map[string]time.Time, len(instants))
	for i, t := range instants {
		if t.Before(stats.Earliest) {
			stats.Earliest = t
		}
		if t.After(stats.Latest) {
			stats.Latest = t
		}
		keys[i] = t.Format(time.RFC3339Nano)
		byKey[keys[i]] = t
	}

	top, _ := topFrequencies(keys, s.config.TopN)
	stats.MostFrequent = make([]profiling.InstantCount, len(top))
	for i, vc := range top {
		stats.MostFrequent[i] = profiling.InstantCount{Value: vc.Value, Instant: byKey[vc.Value], Count: vc.Count}
	}
	return stats
}

func computeArray(clean []dataset.CellValue) *profiling.ArrayStats {
	total, arrays := 0, 0
	stats := &profiling.ArrayStats{}
	for _, v := range clean {
		if v.Kind != dataset.KindArray {
			continue
		}
		n := len(v.Array)
		if arrays == 0 || n < stats.MinLength {
			stats.MinLength = n
		}
		if arrays == 0 || n > stats.MaxLength {
			stats.MaxLength = n
		}
		total += n
		arrays++
	}
	if arrays == 0 {
		return nil
	}
	stats.AverageLength = float64(total) / float64(arrays)
	return stats
}

// topFrequencies counts keys and returns the n most frequent with the number of
// distinct keys. Equal counts keep first-seen order.
func topFrequencies(keys []string, n int) ([]profiling.ValueCount, int) {
	counts := make(map[string]int, len(keys))
	var order []string
	for _, k := range keys {
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	ranked := make([]profiling.ValueCount, len(order))
	for i, k := range order {
		ranked[i] = profiling.ValueCount{Value: k, Count: counts[k]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, len(order)
}
