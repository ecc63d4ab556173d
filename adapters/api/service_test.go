package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colprofile/adapters/datareadiness"
	"colprofile/app"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func newTestRouter() *gin.Engine {
	profiler := datareadiness.NewProfilerAdapter(nil, profiling.DefaultProfilingConfig(), quietLogger())
	profiles := app.NewProfileService(profiler, quietLogger())
	bulk := app.NewBulkUpdateService(profiles, nil, quietLogger())
	return NewRouter(NewHandler(profiles, bulk, nil, quietLogger()))
}

func sampleRows() []dataset.Row {
	return []dataset.Row{
		{"id": dataset.NewNumber(1), "x": dataset.NewNumber(1), "y": dataset.NewNumber(2), "tags": dataset.NewArray(dataset.NewString("a"))},
		{"id": dataset.NewNumber(2), "x": dataset.NewNumber(2), "y": dataset.NewNumber(4), "tags": dataset.NewArray()},
		{"id": dataset.NewNumber(3), "x": dataset.NewNumber(3), "y": dataset.NewNumber(6), "tags": dataset.NewNull()},
		{"id": dataset.NewNumber(4), "x": dataset.NewNumber(4), "y": dataset.NewNumber(8), "tags": dataset.NewNull()},
		{"id": dataset.NewNumber(5), "x": dataset.NewNull(), "y": dataset.NewNumber(10), "tags": dataset.NewNull()},
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDataStats(t *testing.T) {
	w := postJSON(t, newTestRouter(), "/data_stats", DataStatsRequest{Rows: sampleRows()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DataStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Describe, 4)
	assert.Equal(t, 5, resp.Summary.RowCount)
	assert.Equal(t, []string{"id", "x", "y"}, resp.Summary.NumericColumns)

	require.NotNil(t, resp.Correlation)
	r, ok := resp.Correlation.Matrix.At("x", "y")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
}

func TestDataStats_Errors(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"no rows", DataStatsRequest{}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown column", DataStatsRequest{Rows: sampleRows(), Columns: []string{"nope"}}, http.StatusNotFound, errors.CodeNotFound},
		{"not json rows", map[string]interface{}{"rows": "text"}, http.StatusBadRequest, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/data_stats", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestDataStatsUpload(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "scores.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,score\nann,3\nbob,4\ncat,5\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/data_stats/upload?column=score", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp DataStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Describe, 1)
	assert.Equal(t, profiling.TypeInteger, resp.Describe[0].Type)
	assert.InDelta(t, 4.0, resp.Describe[0].Numeric.Mean, 1e-12)
}

func TestBulkFill(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/bulk_fill", BulkFillRequest{Rows: sampleRows(), Row: 4, Stat: "mean"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BulkFillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// x and y are filled, id is reserved and tags is an array column.
	assert.Equal(t, 2, resp.UpdatedFields)
	assert.Equal(t, dataset.NewNumber(2.5), resp.Row["x"])
	assert.Equal(t, dataset.NewNumber(6), resp.Row["y"])
	assert.Equal(t, dataset.NewNumber(5), resp.Row["id"])
	assert.Equal(t, "Updated 2 fields", resp.Message)

	w = postJSON(t, router, "/bulk_fill", BulkFillRequest{Rows: sampleRows(), Stat: "median", All: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// y already holds the median in the third row.
	assert.Equal(t, 9, resp.UpdatedFields)
	assert.Len(t, resp.Rows, 5)
}

func TestBulkFill_Errors(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/bulk_fill", BulkFillRequest{Rows: sampleRows(), Stat: "average"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeInvalidInput, decodeError(t, w).Code)

	w = postJSON(t, router, "/bulk_fill", BulkFillRequest{Rows: sampleRows(), Row: 9, Stat: "mean"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoteProvider_MatchesLocal(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	ds := dataset.New(nil, sampleRows())
	local, err := datareadiness.NewProfilerAdapter(nil, profiling.DefaultProfilingConfig(), quietLogger()).
		Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	remote, err := NewRemoteProvider(DefaultClientConfig(server.URL+"/"), quietLogger()).Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	assert.Equal(t, ds.ID, remote.DatasetID)
	assert.Equal(t, local.Hash, remote.Hash)
	assert.Equal(t, local.Columns, remote.Columns)
	assert.Equal(t, local.Statistics, remote.Statistics)
	assert.Equal(t, local.Summary, remote.Summary)
	require.NotNil(t, remote.Correlation)
	assert.Equal(t, local.Correlation.Matrix, remote.Correlation.Matrix)
}

func TestRemoteProvider_Errors(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()
	provider := NewRemoteProvider(DefaultClientConfig(server.URL), quietLogger())

	_, err := provider.Profile(context.Background(), dataset.New(nil, sampleRows()), []string{"missing"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"describe": "nope"}`))
	}))
	defer broken.Close()

	_, err = NewRemoteProvider(DefaultClientConfig(broken.URL), quietLogger()).Profile(context.Background(), dataset.New(nil, sampleRows()), nil)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}
