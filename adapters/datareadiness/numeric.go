package datareadiness

import (
	"math"
	"slices"
	"sort"

	"github.com/montanaflynn/stats"

	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

func (s *StatisticsCalculator) computeNumeric(clean []dataset.CellValue) *profiling.NumericStats {
	nums := make([]float64, 0, len(clean))
	unparsable := 0
	for _, v := range clean {
		f, ok := s.coercer.ParseNumber(v)
		if !ok {
			unparsable++
			continue
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 {
		return nil
	}

	result := DescribeNumeric(nums, s.config.OutlierFence)
	result.Unparsable = unparsable
	return result
}

// DescribeNumeric computes the numeric statistics record for nums (all finite,
// at least one). Quartiles are nearest-rank; variance is population variance.
// Sums run over values scaled by a power of two, so results match the direct
// computation exactly but cannot overflow; a figure that is still too large for a
// float64 (variance, IQR) saturates at ±MaxFloat64.
func DescribeNumeric(nums []float64, fence float64) *profiling.NumericStats {
	minimum, _ := stats.Min(nums)
	maximum, _ := stats.Max(nums)
	scale := powerOfTwoScale(math.Max(math.Abs(minimum), math.Abs(maximum)))

	scaled := make([]float64, len(nums))
	for i, x := range nums {
		scaled[i] = x / scale
	}
	sorted := slices.Clone(scaled)
	sort.Float64s(sorted)

	mean, _ := stats.Mean(scaled)
	median, _ := stats.Median(sorted)
	variance, _ := stats.PopulationVariance(scaled)
	std := math.Sqrt(variance)
	if minimum == maximum {
		mean, std, variance = minimum/scale, 0, 0
	}
	skewness, kurtosis := standardizedMoments(scaled, mean, std)

	q1, q3 := nearestRankQuartiles(sorted)
	iqr := q3 - q1
	// Fences past the float64 range become ±Inf, which still compare correctly.
	lower, upper := (q1-fence*iqr)*scale, (q3+fence*iqr)*scale

	return &profiling.NumericStats{
		Mean:     saturate(mean * scale),
		Median:   median * scale,
		Mode:     firstMode(nums),
		Std:      saturate(std * scale),
		Variance: saturate(variance * scale * scale),
		Skewness: skewness,
		Kurtosis: kurtosis,
		Q1:       q1 * scale,
		Q3:       q3 * scale,
		IQR:      saturate(iqr * scale),
		Min:      minimum,
		Max:      maximum,
		Outliers: DetectOutliers(nums, lower, upper),
	}
}

// powerOfTwoScale returns the power of two at or just below magnitude (1 for zero)
func powerOfTwoScale(magnitude float64) float64 {
	if magnitude == 0 {
		return 1
	}
	_, exp := math.Frexp(magnitude)
	return math.Ldexp(1, exp-1)
}

func saturate(f float64) float64 {
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// nearestRankQuartiles picks sorted[floor(n*0.25)] and sorted[floor(n*0.75)]
func nearestRankQuartiles(sorted []float64) (float64, float64) {
	n := float64(len(sorted))
	return sorted[int(math.Floor(n*0.25))], sorted[int(math.Floor(n*0.75))]
}

// standardizedMoments returns population skewness and excess kurtosis, both 0 when
// the data has no spread.
func standardizedMoments(nums []float64, mean, std float64) (float64, float64) {
	if std == 0 {
		return 0, 0
	}
	var m3, m4 float64
	for _, x := range nums {
		z := (x - mean) / std
		z2 := z * z
		m3 += z2 * z
		m4 += z2 * z2
	}
	n := float64(len(nums))
	return m3 / n, m4/n - 3
}

// firstMode returns the most frequent value; on ties the value seen first wins
func firstMode(nums []float64) float64 {
	counts := make(map[float64]int, len(nums))
	var order []float64
	for _, x := range nums {
		if _, seen := counts[x]; !seen {
			order = append(order, x)
		}
		counts[x]++
	}

	mode, best := order[0], 0
	for _, x := range order {
		if counts[x] > best {
			mode, best = x, counts[x]
		}
	}
	return mode
}

// DetectOutliers returns, in input order, every value strictly outside [lower, upper]
func DetectOutliers(nums []float64, lower, upper float64) []float64 {
	outliers := []float64{}
	for _, x := range nums {
		if x < lower || x > upper {
			outliers = append(outliers, x)
		}
	}
	return outliers
}
