package datareadiness

import (
	"math"

	"colprofile/adapters/datareadiness/coercer"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

// TypeDetector infers the semantic type of a column from its values
type TypeDetector struct {
	coercer *coercer.TypeCoercer
	config  profiling.ProfilingConfig
}

// NewTypeDetector creates a detector. A nil coercer uses the default rules.
func NewTypeDetector(c *coercer.TypeCoercer, config profiling.ProfilingConfig) *TypeDetector {
	if c == nil {
		c = coercer.NewDefaultTypeCoercer()
	}
	return &TypeDetector{coercer: c, config: config}
}

// Infer returns the column's DataType
func (d *TypeDetector) Infer(values []dataset.CellValue) profiling.DataType {
	return d.Detect(values).Type
}

// Detect applies the detection rules in order over the non-missing values; the
// first rule that every value satisfies wins.
func (d *TypeDetector) Detect(values []dataset.CellValue) profiling.Detection {
	if n := d.config.InferenceSampleSize; n > 0 && len(values) > n {
		values = values[:n]
	}

	present := make([]dataset.CellValue, 0, len(values))
	for _, v := range values {
		if !v.IsMissing() {
			present = append(present, v)
		}
	}

	if len(present) == 0 {
		return profiling.Detection{Type: profiling.TypeEmpty}
	}

	if all(present, func(v dataset.CellValue) bool { return v.Kind == dataset.KindArray }) {
		return profiling.Detection{Type: profiling.TypeArray}
	}

	if d.config.PreferUnixTimestamps && all(present, d.coercer.IsUnixSeconds) {
		return profiling.Detection{Type: profiling.TypeTimestamp}
	}

	if det, ok := d.detectNumeric(present); ok {
		return det
	}

	if dt, ok := d.detectDate(present); ok {
		return profiling.Detection{Type: dt}
	}

	if all(present, d.coercer.IsUnixSeconds) {
		return profiling.Detection{Type: profiling.TypeTimestamp}
	}

	if all(present, func(v dataset.CellValue) bool {
		_, ok := d.coercer.ParseBoolean(v)
		return ok
	}) {
		return profiling.Detection{Type: profiling.TypeBoolean}
	}

	if all(present, d.coercer.IsCharacter) {
		return profiling.Detection{Type: profiling.TypeCharacter}
	}

	return profiling.Detection{Type: d.classifyStringLike(present)}
}

func (d *TypeDetector) detectNumeric(present []dataset.CellValue) (profiling.Detection, bool) {
	allInt := true
	binary := true
	for _, v := range present {
		f, ok := d.coercer.ParseNumber(v)
		if !ok {
			return profiling.Detection{}, false
		}
		if f != math.Trunc(f) {
			allInt = false
		}
		if f != 0 && f != 1 {
			binary = false
		}
	}
	if !allInt {
		return profiling.Detection{Type: profiling.TypeFloat}, true
	}
	return profiling.Detection{Type: profiling.TypeInteger, IsBinary: binary}, true
}

func (d *TypeDetector) detectDate(present []dataset.CellValue) (profiling.DataType, bool) {
	withTime := false
	for _, v := range present {
		_, hasTime, ok := d.coercer.ParseDate(v)
		if !ok {
			return "", false
		}
		withTime = withTime || hasTime
	}
	if withTime {
		return profiling.TypeDateTime, true
	}
	return profiling.TypeDate, true
}

// classifyStringLike splits string columns into low-cardinality categories and the rest
func (d *TypeDetector) classifyStringLike(present []dataset.CellValue) profiling.DataType {
	unique := make(map[string]struct{}, len(present))
	for _, v := range present {
		unique[v.String()] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(present))
	if len(unique) <= d.config.CategoryMaxUnique && ratio < d.config.CategoryMaxRatio {
		return profiling.TypeCategory
	}
	return profiling.TypeObject
}

func all(values []dataset.CellValue, pred func(dataset.CellValue) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}
