package snapshot

// Config holds configuration for the snapshot file source
type Config struct {
	FilePath string `json:"file_path"`
	Format   Format `json:"format"`
	// Table is read when the snapshot is a sqlite database
	Table string `json:"table"`
}

// DefaultConfig returns sensible defaults for the cleaned loan snapshot
func DefaultConfig() Config {
	return Config{
		FilePath: "data_input/loan_clean",
		Format:   FormatAuto,
		Table:    "loan_clean",
	}
}
