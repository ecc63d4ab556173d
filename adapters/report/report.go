package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"colprofile/domain/profiling"
)

// Format selects how a profile is printed
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, markdown (or md) and html
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, markdown or html)", s)
}

// Markdown renders the profile as a Markdown document: summary, one table row per
// column and the correlation matrix.
func Markdown(title string, p *profiling.DatasetProfile) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d rows, %d columns, %d missing cells\n\n",
		p.Summary.RowCount, p.Summary.ColumnCount, p.Summary.MissingCells)

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Count | Missing | Summary |\n")
	b.WriteString("|---|---|---:|---:|---|\n")
	for _, s := range p.Statistics {
		typ := string(s.Type)
		if s.IsBinary {
			typ += " (binary)"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n", cell(s.Column), typ, s.Count, s.Missing, cell(describe(s)))
	}

	if c := p.Correlation; c != nil && len(c.Matrix.Columns) > 1 {
		fmt.Fprintf(&b, "\n## Correlation (%s)\n\n", c.Mode)
		b.WriteString("| |")
		for _, col := range c.Matrix.Columns {
			fmt.Fprintf(&b, " %s |", cell(col))
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(c.Matrix.Columns)))
		b.WriteByte('\n')
		for i, col := range c.Matrix.Columns {
			fmt.Fprintf(&b, "| %s |", cell(col))
			for j := range c.Matrix.Columns {
				fmt.Fprintf(&b, " %s (p %s) |", num(c.Matrix.Values[i][j]), num(c.Significance.Values[i][j]))
			}
			b.WriteByte('\n')
		}
		for _, e := range c.Excluded {
			fmt.Fprintf(&b, "\n- %s excluded: %s", cell(e.Column), e.Reason)
		}
		if len(c.Excluded) > 0 {
			b.WriteByte('\n')
		}
	}
	return b.Bytes()
}

// HTML renders the Markdown report as a standalone HTML page
func HTML(title string, p *profiling.DatasetProfile) []byte {
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(Markdown(title, p), parser.NewWithExtensions(parser.CommonExtensions), renderer)
}

func describe(s profiling.ColumnStatistics) string {
	switch {
	case s.Numeric != nil:
		n := s.Numeric
		return fmt.Sprintf("mean %s, median %s, std %s, range [%s, %s], %d outliers",
			num(n.Mean), num(n.Median), num(n.Std), num(n.Min), num(n.Max), len(n.Outliers))
	case s.Boolean != nil:
		return fmt.Sprintf("%s%% true, %s%% false", num(s.Boolean.TruePercentage), num(s.Boolean.FalsePercentage))
	case s.Temporal != nil:
		return fmt.Sprintf("%s to %s",
			s.Temporal.Earliest.Format("2006-01-02 15:04:05"), s.Temporal.Latest.Format("2006-01-02 15:04:05"))
	case s.Array != nil:
		return fmt.Sprintf("length %d to %d, average %s", s.Array.MinLength, s.Array.MaxLength, num(s.Array.AverageLength))
	case s.Frequency != nil:
		if top, ok := s.Frequency.Top(); ok {
			return fmt.Sprintf("%d unique, top %q (%d)", s.Frequency.UniqueCount, top.Value, top.Count)
		}
		return fmt.Sprintf("%d unique", s.Frequency.UniqueCount)
	}
	return ""
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}

// cell escapes table delimiters and line breaks
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.NewReplacer("\r\n", " ", "\n", " ").Replace(s)
}
