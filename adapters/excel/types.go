package excel

import "colprofile/domain/dataset"

// Format is a supported input file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// RawRowData represents a row of raw data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents a tabular file before cell values are typed
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// ToDataset turns the raw rows into a dataset of string cells. Absent cells become
// empty strings, which profiling counts as missing.
func (d *ExcelData) ToDataset() *dataset.Dataset {
	rows := make([]dataset.Row, len(d.Rows))
	for i, raw := range d.Rows {
		row := make(dataset.Row, len(d.Headers))
		for _, h := range d.Headers {
			row[h] = dataset.NewString(raw[h])
		}
		rows[i] = row
	}
	return dataset.New(append([]string(nil), d.Headers...), rows)
}
