package config

import "fmt"

// StorageConfig selects the persistence backend for inventory and reports.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the SQLite database file for inventory state.
	Path string `json:"path"`
	// ReportPath is the SQLite database file for simulation reports. Falls
	// back to Path when empty.
	ReportPath string `json:"report_path"`
	// JournalPath is the JSONL file recording dispatch operations. Empty
	// disables the journal.
	JournalPath string `json:"journal_path"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "packdispatch.db"
	}
	if c.ReportPath == "" {
		c.ReportPath = c.Path
	}
}

// Validate checks mandatory fields.
func (c StorageConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown storage backend %s", c.Backend)
	}
	return nil
}
