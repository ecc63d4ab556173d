package excel

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/internal"
	"colprofile/internal/errors"
)

// DataReader reads CSV, TSV, XLSX and JSON files into datasets
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, logger: logger.With("reader")}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.UnsupportedFormat(ext)
	}
}

// ReadFile reads the file at path, choosing the parser from its extension
func (r *DataReader) ReadFile(path string) (*dataset.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.NotFound("file "+path), "read %s", path)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	ds, err := r.Read(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return ds, nil
}

// Read parses src in the given format
func (r *DataReader) Read(src io.Reader, format Format) (*dataset.Dataset, error) {
	start := time.Now()

	var (
		ds  *dataset.Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = r.readDelimited(src, ',')
	case FormatTSV:
		ds, err = r.readDelimited(src, '\t')
	case FormatXLSX:
		ds, err = r.readExcel(src)
	case FormatJSON:
		ds, err = r.readJSON(src)
	default:
		return nil, errors.UnsupportedFormat(string(format))
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("%s read in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6, len(ds.Columns), len(ds.Rows))
	return ds, nil
}

// readExcel reads the configured sheet, or the first one
func (r *DataReader) readExcel(src io.Reader) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q", sheet))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	r.logger.Debug("sheet %s: %d raw rows", sheet, len(rows))
	return r.processRows(rows)
}

func (r *DataReader) readDelimited(src io.Reader, delimiter rune) (*dataset.Dataset, error) {
	reader := csv.NewReader(src)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read delimited file: %w", err))
	}
	return r.processRows(rows)
}

// readJSON accepts an array of row objects
func (r *DataReader) readJSON(src io.Reader) (*dataset.Dataset, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read JSON input")
	}

	var rows []dataset.Row
	if err := json.Unmarshal(bytes.TrimSpace(data), &rows); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("JSON input must be an array of objects: %w", err))
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(core.ErrEmptyDataset, "JSON input has no rows")
	}
	if r.config.MaxRows > 0 && len(rows) > r.config.MaxRows {
		rows = rows[:r.config.MaxRows]
	}
	return dataset.New(nil, rows), nil
}

// processRows converts raw string rows into a dataset. The first row is the header.
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) < 2 {
		return nil, errors.Wrap(core.ErrEmptyDataset, "file must have at least a header row and one data row")
	}

	headers := r.headers(rows[0])
	body := rows[1:]
	if r.config.MaxRows > 0 && len(body) > r.config.MaxRows {
		body = body[:r.config.MaxRows]
	}

	data := &ExcelData{Headers: headers, Rows: make([]RawRowData, 0, len(body))}
	for _, row := range body {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = r.clean(cell)
			}
		}
		data.Rows = append(data.Rows, rowData)
	}
	return data.ToDataset(), nil
}

// headers names blank header cells after their position and suffixes duplicates
func (r *DataReader) headers(row []string) []string {
	headers := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, h := range row {
		h = r.clean(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + "_" + strconv.Itoa(n)
		}
		headers[i] = h
	}
	return headers
}

func (r *DataReader) clean(s string) string {
	if r.config.TrimSpace {
		return strings.TrimSpace(s)
	}
	return s
}

// commonEntityColumns are checked, in order, before falling back to the first column
var commonEntityColumns = []string{
	"id",
	"rowid",
	"entity_id",
	"customer_id",
	"user_id",
	"account_id",
	"record_id",
	"key",
	"primary_key",
}

// DetectEntityColumn finds the column that identifies rows: a well-known name, or the
// first column, as long as its values are mostly present and mostly distinct.
func DetectEntityColumn(ds *dataset.Dataset) (string, bool) {
	if ds == nil || len(ds.Rows) == 0 {
		return "", false
	}

	for _, name := range commonEntityColumns {
		for _, column := range ds.Columns {
			if strings.ToLower(column) == name && isValidEntityColumn(ds, column) {
				return column, true
			}
		}
	}

	if len(ds.Columns) > 0 && isValidEntityColumn(ds, ds.Columns[0]) {
		return ds.Columns[0], true
	}
	return "", false
}

// isValidEntityColumn checks if a column is suitable as an entity column
func isValidEntityColumn(ds *dataset.Dataset, column string) bool {
	values := make(map[string]bool)
	emptyCount := 0
	for _, v := range ds.Values(column) {
		if v.IsMissing() {
			emptyCount++
			continue
		}
		values[v.String()] = true
	}

	// Less than 50% empty, more than 50% unique
	totalRows := float64(len(ds.Rows))
	return float64(emptyCount)/totalRows < 0.5 && float64(len(values))/totalRows > 0.5
}
