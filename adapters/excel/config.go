package excel

// ReaderConfig holds configuration for the file reader
type ReaderConfig struct {
	// Sheet names the XLSX sheet to read; empty reads the first sheet.
	Sheet string `json:"sheet"`
	// TrimSpace trims every header and cell.
	TrimSpace bool `json:"trim_space"`
	// MaxRows caps the number of data rows read; 0 reads everything.
	MaxRows int `json:"max_rows"`
}

// DefaultReaderConfig returns sensible defaults for file ingestion
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		TrimSpace: true,
	}
}
