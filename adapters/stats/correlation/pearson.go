package correlation

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"colprofile/domain/profiling"
	"colprofile/internal"
)

// Analyzer computes a Pearson correlation matrix over numeric columns
type Analyzer struct {
	mode   profiling.SignificanceMode
	logger *internal.Logger
}

// NewAnalyzer creates an analyzer. An empty mode means legacy.
func NewAnalyzer(mode profiling.SignificanceMode, logger *internal.Logger) *Analyzer {
	if mode == "" {
		mode = profiling.SignificanceLegacy
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Analyzer{mode: mode, logger: logger.With("correlation")}
}

// Compute builds the correlation and significance matrices. Columns come from one
// dataset and should share its row count; NaN marks a missing cell. Columns are
// ordered by name. A column whose length differs from the most common length, or
// with fewer than two values or no spread, is excluded. Each pair uses the rows where
// both columns have a value.
func (a *Analyzer) Compute(columns map[string][]float64) profiling.CorrelationResult {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	result := profiling.CorrelationResult{Mode: a.mode}

	length := commonLength(names, columns)
	var included []string
	for _, name := range names {
		values := columns[name]
		if reason := a.exclusionReason(values, length); reason != "" {
			a.logger.Warn("excluding column %q: %s", name, reason)
			result.Excluded = append(result.Excluded, profiling.ExcludedColumn{Column: name, Reason: reason})
			continue
		}
		included = append(included, name)
	}

	k := len(included)
	matrix := newSquare(k)
	significance := newSquare(k)
	for i := 0; i < k; i++ {
		matrix[i][i] = 1.0
		significance[i][i] = 0
		for j := i + 1; j < k; j++ {
			r, n := pearson(columns[included[i]], columns[included[j]])
			p := a.pValue(r, n)
			matrix[i][j], matrix[j][i] = r, r
			significance[i][j], significance[j][i] = p, p
		}
	}

	result.Matrix = profiling.CorrelationMatrix{Columns: included, Values: matrix}
	result.Significance = profiling.SignificanceMatrix{Columns: included, Values: significance}
	return result
}

func (a *Analyzer) exclusionReason(values []float64, length int) string {
	if len(values) != length {
		return fmt.Sprintf("length %d differs from %d", len(values), length)
	}
	finite := finiteValues(values)
	if len(finite) < 2 {
		return "fewer than 2 values"
	}
	lo, _ := stats.Min(finite)
	hi, _ := stats.Max(finite)
	if lo == hi {
		return "zero standard deviation"
	}
	return ""
}

// commonLength is the most frequent column length; ties go to the longer one
func commonLength(names []string, columns map[string][]float64) int {
	counts := make(map[int]int)
	length, best := 0, 0
	for _, name := range names {
		n := len(columns[name])
		counts[n]++
		if c := counts[n]; c > best || (c == best && n > length) {
			length, best = n, c
		}
	}
	return length
}

// pearson returns r over the pairwise-complete rows of x and y, and the number of
// rows used. Pairs with no spread correlate at 0. Each side is scaled by a power of
// two first; r does not change, but the sums cannot overflow.
func pearson(x, y []float64) (float64, int) {
	var xs, ys []float64
	for i := range x {
		if isFinite(x[i]) && isFinite(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	n := len(xs)
	if n < 2 {
		return 0, n
	}
	rescale(xs)
	rescale(ys)

	meanX, _ := stats.Mean(xs)
	meanY, _ := stats.Mean(ys)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, n
	}

	r := sxy / math.Sqrt(sxx*syy)
	if r > 1.0 {
		r = 1.0
	} else if r < -1.0 {
		r = -1.0
	}
	return r, n
}

func (a *Analyzer) pValue(r float64, n int) float64 {
	if a.mode == profiling.SignificanceStudentsT {
		return StudentsTPValue(r, n)
	}
	return LegacyPValue(r, n)
}

// LegacyPValue is the dashboard's historical estimate 2·(1 − |t|/sqrt(n)) with
// t = r·sqrt((n−2)/(1−r²)). It is not a p-value: it is not derived from the t
// distribution and goes negative once |t| > sqrt(n).
func LegacyPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	return 2 * (1 - math.Abs(t)/math.Sqrt(float64(n)))
}

// StudentsTPValue is the two-sided p-value of r under H0: ρ = 0, using Student's t
// with n−2 degrees of freedom.
func StudentsTPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Min(1, math.Max(0, p))
}

// rescale divides values in place by the power of two at or below their largest magnitude
func rescale(values []float64) {
	var magnitude float64
	for _, v := range values {
		magnitude = math.Max(magnitude, math.Abs(v))
	}
	if magnitude == 0 {
		return
	}
	_, exp := math.Frexp(magnitude)
	scale := math.Ldexp(1, exp-1)
	for i := range values {
		values[i] /= scale
	}
}

func newSquare(k int) [][]float64 {
	m := make([][]float64, k)
	for i := range m {
		m[i] = make([]float64, k)
	}
	return m
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
