package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/errors"
)

// RemoteProvider computes profiles by calling a remote /data_stats endpoint
type RemoteProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *internal.Logger
}

// NewRemoteProvider creates a provider for the service at config.BaseURL
func NewRemoteProvider(config ClientConfig, logger *internal.Logger) *RemoteProvider {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RemoteProvider{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With("remote-stats"),
	}
}

// Profile implements ports.StatisticsProvider
func (p *RemoteProvider) Profile(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error) {
	if ds == nil {
		return nil, fmt.Errorf("remote profile: %w", core.ErrEmptyDataset)
	}
	payload, err := json.Marshal(DataStatsRequest{Rows: ds.Rows, Columns: columns})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/data_stats", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("data_stats", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.ExternalServiceError("data_stats", fmt.Errorf("failed to read response: %w", err))
	}
	p.logger.Debug("POST /data_stats -> %d in %.2fms", resp.StatusCode, float64(time.Since(start).Nanoseconds())/1e6)

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp.StatusCode, body)
	}

	profile, err := parseProfile(body)
	if err != nil {
		return nil, errors.ExternalServiceError("data_stats", err)
	}
	profile.DatasetID = ds.ID
	return profile, nil
}

// remoteError keeps the remote code when the service reports one
func remoteError(status int, body []byte) error {
	msg := gjson.GetBytes(body, "error").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	cause := fmt.Errorf("status %d: %s", status, msg)

	switch code := gjson.GetBytes(body, "code").String(); code {
	case errors.CodeInvalidInput, errors.CodeNotFound, errors.CodeUnsupportedFormat:
		return &errors.AppError{Code: code, Message: "data_stats rejected the request", Cause: cause}
	}
	return errors.ExternalServiceError("data_stats", cause)
}

func parseProfile(body []byte) (*profiling.DatasetProfile, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	result := gjson.ParseBytes(body)

	describe := result.Get("describe")
	if !describe.IsArray() {
		return nil, fmt.Errorf("response has no describe array")
	}

	profile := &profiling.DatasetProfile{
		Hash:       core.ContentHash(result.Get("hash").String()),
		ComputedAt: core.NewTimestamp(result.Get("computed_at").Time()),
	}
	if err := json.Unmarshal([]byte(describe.Raw), &profile.Statistics); err != nil {
		return nil, fmt.Errorf("failed to parse describe: %w", err)
	}
	result.Get("columns").ForEach(func(_, v gjson.Result) bool {
		profile.Columns = append(profile.Columns, v.String())
		return true
	})
	if summary := result.Get("summary"); summary.IsObject() {
		if err := json.Unmarshal([]byte(summary.Raw), &profile.Summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary: %w", err)
		}
	}
	if corr := result.Get("correlation"); corr.IsObject() {
		profile.Correlation = &profiling.CorrelationResult{}
		if err := json.Unmarshal([]byte(corr.Raw), profile.Correlation); err != nil {
			return nil, fmt.Errorf("failed to parse correlation: %w", err)
		}
	}
	return profile, nil
}
