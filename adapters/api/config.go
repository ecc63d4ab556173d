package api

import "time"

// ClientConfig configures the RemoteProvider
type ClientConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultClientConfig returns sensible defaults for calling a remote stats service
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// MaxUploadBytes caps multipart uploads to /data_stats/upload
const MaxUploadBytes = 32 << 20
