package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"colprofile/domain/dataset"
)

// TypeCoercer reads typed meaning out of cells with fixed, locale-independent rules
type TypeCoercer struct {
	config CoercionConfig
}

// DateLayout is a time.Parse layout plus whether it carries a time of day
type DateLayout struct {
	Layout  string `json:"layout"`
	HasTime bool   `json:"has_time"`
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	DateLayouts []DateLayout `json:"date_layouts"` // tried in order
	TrimSpace   bool         `json:"trim_space"`   // trim before numeric/date parsing
}

// DefaultCoercionConfig returns the layouts the dashboard has always accepted
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		DateLayouts: []DateLayout{
			{time.RFC3339Nano, true},
			{time.RFC3339, true},
			{"2006-01-02T15:04:05", true},
			{"2006-01-02T15:04", true},
			{"2006-01-02 15:04:05", true},
			{"2006-01-02 15:04", true},
			{"2006-01-02", false},
			{"2006/01/02", false},
			{"01/02/2006 15:04:05", true},
			{"01/02/2006", false},
			{"02-Jan-2006", false},
			{"Jan 2, 2006", false},
			{"January 2, 2006", false},
			{time.RFC1123, true},
			{time.RFC1123Z, true},
		},
		TrimSpace: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// NewDefaultTypeCoercer creates a coercer with DefaultCoercionConfig
func NewDefaultTypeCoercer() *TypeCoercer {
	return NewTypeCoercer(DefaultCoercionConfig())
}

func (c *TypeCoercer) text(v dataset.CellValue) string {
	if c.config.TrimSpace {
		return strings.TrimSpace(v.Text)
	}
	return v.Text
}

// ParseNumber reads a finite float from a numeric cell or a numeric string.
// The whole token must parse; "12abc" is not a number.
func (c *TypeCoercer) ParseNumber(v dataset.CellValue) (float64, bool) {
	var f float64
	switch v.Kind {
	case dataset.KindNumber:
		f = v.Number
	case dataset.KindString:
		s := c.text(v)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBoolean accepts boolean cells and the strings "true"/"false" in any case
func (c *TypeCoercer) ParseBoolean(v dataset.CellValue) (bool, bool) {
	switch v.Kind {
	case dataset.KindBool:
		return v.Bool, true
	case dataset.KindString:
		s := c.text(v)
		if strings.EqualFold(s, "true") {
			return true, true
		}
		if strings.EqualFold(s, "false") {
			return false, true
		}
	}
	return false, false
}

// ParseDate reads an instant from a time cell or a date string. hasTime reports
// whether a time of day was present.
func (c *TypeCoercer) ParseDate(v dataset.CellValue) (t time.Time, hasTime bool, ok bool) {
	switch v.Kind {
	case dataset.KindTime:
		h, m, s := v.Time.Clock()
		return v.Time, h != 0 || m != 0 || s != 0 || v.Time.Nanosecond() != 0, true
	case dataset.KindString:
		s := c.text(v)
		if s == "" {
			return time.Time{}, false, false
		}
		for _, layout := range c.config.DateLayouts {
			if parsed, err := time.Parse(layout.Layout, s); err == nil {
				return parsed, layout.HasTime, true
			}
		}
	}
	return time.Time{}, false, false
}

// IsUnixSeconds reports a 10-digit token: a string of exactly ten ASCII digits, or an
// integral number with ten digits.
func (c *TypeCoercer) IsUnixSeconds(v dataset.CellValue) bool {
	_, ok := c.ParseUnixSeconds(v)
	return ok
}

// ParseUnixSeconds reads a 10-digit token as seconds since the Unix epoch
func (c *TypeCoercer) ParseUnixSeconds(v dataset.CellValue) (time.Time, bool) {
	var secs int64
	switch v.Kind {
	case dataset.KindString:
		s := c.text(v)
		if len(s) != 10 {
			return time.Time{}, false
		}
		for i := 0; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return time.Time{}, false
			}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		secs = n
	case dataset.KindNumber:
		if v.Number != math.Trunc(v.Number) || v.Number < 1e9 || v.Number >= 1e10 {
			return time.Time{}, false
		}
		secs = int64(v.Number)
	default:
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// IsCharacter reports a value whose display form is exactly one character
func (c *TypeCoercer) IsCharacter(v dataset.CellValue) bool {
	if v.Kind == dataset.KindArray || v.IsMissing() {
		return false
	}
	return utf8.RuneCountInString(v.String()) == 1
}
