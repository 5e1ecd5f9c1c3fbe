package export

import (
	"path/filepath"
	"time"
)

// Config holds export output settings.
type Config struct {
	// BasePath is the root directory for generated files.
	BasePath string `mapstructure:"base_path" default:"./outputs"`
	// ExtractsFolder is the subdirectory for extract workbooks.
	ExtractsFolder string `mapstructure:"extracts_folder" default:"extracts"`
	// ReportsFolder is the subdirectory for PDF reports.
	ReportsFolder string `mapstructure:"reports_folder" default:"reports"`
	// CreateDateSubfolder groups outputs in one folder per day.
	CreateDateSubfolder bool `mapstructure:"create_date_subfolder" default:"true"`
	// FilePrefix is prepended to every generated file name.
	FilePrefix string `mapstructure:"file_prefix" default:"illumio_monitoring"`
	// Format selects the extract format, "excel" or "csv".
	Format string `mapstructure:"format" default:"excel"`
}

// dateLayout matches the DD-MM-YYYY convention of the generated artifacts.
const dateLayout = "02-01-2006"

// ExtractsPath returns the directory extracts are written to for a run
// started at the given time.
func (c Config) ExtractsPath(now time.Time) string {
	return c.datedPath(c.ExtractsFolder, now)
}

// ReportsPath returns the directory PDF reports are written to for a run
// started at the given time.
func (c Config) ReportsPath(now time.Time) string {
	return c.datedPath(c.ReportsFolder, now)
}

func (c Config) datedPath(folder string, now time.Time) string {
	path := filepath.Join(c.BasePath, folder)
	if c.CreateDateSubfolder {
		path = filepath.Join(path, now.Format(dateLayout))
	}
	return path
}
