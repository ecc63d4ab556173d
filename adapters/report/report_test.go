package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colprofile/domain/profiling"
)

func sampleProfile() *profiling.DatasetProfile {
	return &profiling.DatasetProfile{
		Columns: []string{"price", "qty", "region|zone"},
		Statistics: []profiling.ColumnStatistics{
			{Column: "price", Type: profiling.TypeFloat, Count: 4, Missing: 1, Numeric: &profiling.NumericStats{Mean: 27.5, Median: 25, Std: 14.79, Min: 10, Max: 50, Outliers: []float64{}}},
			{Column: "qty", Type: profiling.TypeInteger, Count: 5, Numeric: &profiling.NumericStats{Mean: 3, Median: 3, Min: 1, Max: 5, Outliers: []float64{}}},
			{Column: "region|zone", Type: profiling.TypeCategory, Count: 5, Frequency: &profiling.FrequencyStats{
				MostFrequent: []profiling.ValueCount{{Value: "North", Count: 3}}, UniqueCount: 2,
			}},
		},
		Summary: profiling.DatasetSummary{RowCount: 5, ColumnCount: 3, MissingCells: 1},
		Correlation: &profiling.CorrelationResult{
			Mode:         profiling.SignificanceLegacy,
			Matrix:       profiling.CorrelationMatrix{Columns: []string{"price", "qty"}, Values: [][]float64{{1, 0.9}, {0.9, 1}}},
			Significance: profiling.SignificanceMatrix{Columns: []string{"price", "qty"}, Values: [][]float64{{0, 0.1}, {0.1, 0}}},
			Excluded:     []profiling.ExcludedColumn{{Column: "flat", Reason: "zero standard deviation"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{" html ", FormatHTML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.expected, got, tt.in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("sales.csv", sampleProfile()))

	assert.True(t, strings.HasPrefix(out, "# sales.csv\n"))
	assert.Contains(t, out, "5 rows, 3 columns, 1 missing cells")
	assert.Contains(t, out, "| price | float | 4 | 1 | mean 27.5, median 25, std 14.79, range [10, 50], 0 outliers |")
	assert.Contains(t, out, `| region\|zone | category | 5 | 0 | 2 unique, top "North" (3) |`)
	assert.Contains(t, out, "## Correlation (legacy)")
	assert.Contains(t, out, "| price | 1 (p 0) | 0.9 (p 0.1) |")
	assert.Contains(t, out, "- flat excluded: zero standard deviation")
}

func TestMarkdown_NoCorrelation(t *testing.T) {
	p := sampleProfile()
	p.Correlation = nil
	assert.NotContains(t, string(Markdown("x", p)), "Correlation")
}

func TestHTML(t *testing.T) {
	out := string(HTML("sales.csv", sampleProfile()))

	assert.Contains(t, out, "<title>sales.csv</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "price")
}
