package profiling

import "fmt"

// ProfilingConfig defines the profiling parameters
type ProfilingConfig struct {
	// InferenceSampleSize limits type inference to the first N values; 0 uses the
	// full column.
	InferenceSampleSize int `json:"inference_sample_size"`
	// TopN is the length of most-frequent lists.
	TopN int `json:"top_n"`
	// CategoryMaxUnique and CategoryMaxRatio bound the Category classification:
	// unique <= CategoryMaxUnique and unique/count < CategoryMaxRatio.
	CategoryMaxUnique int     `json:"category_max_unique"`
	CategoryMaxRatio  float64 `json:"category_max_ratio"`
	// OutlierFence is the IQR multiplier of the outlier fence.
	OutlierFence float64 `json:"outlier_fence"`
	// PreferUnixTimestamps classifies all-10-digit columns as timestamp before the
	// numeric rule gets a chance to call them integer.
	PreferUnixTimestamps bool `json:"prefer_unix_timestamps"`
	// TypeOverrides pins the type of named columns and skips inference for them.
	TypeOverrides map[string]DataType `json:"type_overrides,omitempty"`
	// Significance picks the p estimate for the correlation matrix.
	Significance SignificanceMode `json:"significance"`
	// SkipCorrelation turns the matrix off for callers that only want describe output.
	SkipCorrelation bool `json:"skip_correlation"`
	// MaxWorkers bounds per-column fan-out; 1 computes columns sequentially.
	MaxWorkers int `json:"max_workers"`
}

// DefaultProfilingConfig returns the defaults used by every call site
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		InferenceSampleSize: 0,
		TopN:                3,
		CategoryMaxUnique:   10,
		CategoryMaxRatio:    0.5,
		OutlierFence:        1.5,
		Significance:        SignificanceLegacy,
		MaxWorkers:          1,
	}
}

// Validate checks the config for values the engine cannot work with
func (c ProfilingConfig) Validate() error {
	if c.InferenceSampleSize < 0 {
		return fmt.Errorf("inference sample size must be >= 0, got %d", c.InferenceSampleSize)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top N must be >= 1, got %d", c.TopN)
	}
	if c.CategoryMaxUnique < 0 {
		return fmt.Errorf("category max unique must be >= 0, got %d", c.CategoryMaxUnique)
	}
	if c.CategoryMaxRatio < 0 || c.CategoryMaxRatio > 1 {
		return fmt.Errorf("category max ratio must be in [0, 1], got %g", c.CategoryMaxRatio)
	}
	if c.OutlierFence < 0 {
		return fmt.Errorf("outlier fence must be >= 0, got %g", c.OutlierFence)
	}
	switch c.Significance {
	case SignificanceLegacy, SignificanceStudentsT:
	default:
		return fmt.Errorf("unknown significance mode %q", c.Significance)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be >= 1, got %d", c.MaxWorkers)
	}
	return nil
}
