package api

import (
	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

// DataStatsRequest asks for the profile of a set of rows
type DataStatsRequest struct {
	Rows    []dataset.Row `json:"rows"`
	Columns []string      `json:"columns,omitempty"`
}

// DataStatsResponse carries the describe table, the correlation matrix and the
// dataset summary
type DataStatsResponse struct {
	DatasetID   core.DatasetID               `json:"dataset_id"`
	Hash        core.ContentHash             `json:"hash"`
	Columns     []string                     `json:"columns"`
	Describe    []profiling.ColumnStatistics `json:"describe"`
	Correlation *profiling.CorrelationResult `json:"correlation,omitempty"`
	Summary     profiling.DatasetSummary     `json:"summary"`
	ComputedAt  core.Timestamp               `json:"computed_at"`
}

// BulkFillRequest fills one row, or every row when All is set, with a statistic
type BulkFillRequest struct {
	Rows []dataset.Row `json:"rows"`
	Row  int           `json:"row"`
	Stat string        `json:"stat"`
	All  bool          `json:"all,omitempty"`
}

// BulkFillResponse reports the edited row(s) and how many fields changed
type BulkFillResponse struct {
	Row           dataset.Row   `json:"row,omitempty"`
	Rows          []dataset.Row `json:"rows,omitempty"`
	UpdatedFields int           `json:"updated_fields"`
	Message       string        `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newDataStatsResponse(p *profiling.DatasetProfile) DataStatsResponse {
	return DataStatsResponse{
		DatasetID:   p.DatasetID,
		Hash:        p.Hash,
		Columns:     p.Columns,
		Describe:    p.Statistics,
		Correlation: p.Correlation,
		Summary:     p.Summary,
		ComputedAt:  p.ComputedAt,
	}
}
