package profiling

import "slices"

// CorrelationMatrix is a square matrix over Columns; Values[i][j] is the Pearson
// correlation of Columns[i] and Columns[j].
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// SignificanceMatrix runs parallel to CorrelationMatrix with one p estimate per cell
type SignificanceMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Index returns the position of column in the matrix, or -1
func (m CorrelationMatrix) Index(column string) int {
	for i, c := range m.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// At returns the correlation of two columns
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// ExcludedColumn records a numeric column left out of the matrix
type ExcludedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// SignificanceMode selects how the per-cell p estimate is computed
type SignificanceMode string

const (
	// SignificanceLegacy is p ≈ 2·(1 − |t|/sqrt(n)). It is not derived from the
	// t distribution and can leave [0, 1]; kept for parity with existing dashboards.
	SignificanceLegacy SignificanceMode = "legacy"
	// SignificanceStudentsT is the two-sided Student's t survival with n−2 df.
	SignificanceStudentsT SignificanceMode = "students_t"
)

// CorrelationResult bundles the matrix, its significance estimates and exclusions
type CorrelationResult struct {
	Matrix       CorrelationMatrix  `json:"matrix"`
	Significance SignificanceMatrix `json:"significance"`
	Mode         SignificanceMode   `json:"mode"`
	Excluded     []ExcludedColumn   `json:"excluded,omitempty"`
}

// Clone returns a deep copy of the result
func (r CorrelationResult) Clone() CorrelationResult {
	r.Matrix = CorrelationMatrix{Columns: slices.Clone(r.Matrix.Columns), Values: cloneSquare(r.Matrix.Values)}
	r.Significance = SignificanceMatrix{Columns: slices.Clone(r.Significance.Columns), Values: cloneSquare(r.Significance.Values)}
	r.Excluded = slices.Clone(r.Excluded)
	return r
}

func cloneSquare(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}
