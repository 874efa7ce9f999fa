package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/selection/config"
)

// OutputManager handles structured run output with CSV logging. The census
// file is named from the session's start timestamp so back-to-back runs in
// the same directory never collide.
type OutputManager struct {
	dir        string
	censusFile *os.File
	statsFile  *os.File

	// Track if headers have been written
	censusHeaderWritten bool
	statsHeaderWritten  bool
}

// CensusFileName derives the census filename from the session start time.
func CensusFileName(startedAt time.Time) string {
	return fmt.Sprintf("census_%s.csv", startedAt.UTC().Format("20060102_150405"))
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, startedAt time.Time) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	censusPath := filepath.Join(dir, CensusFileName(startedAt))
	f, err := os.Create(censusPath)
	if err != nil {
		return nil, fmt.Errorf("creating census file: %w", err)
	}
	om.censusFile = f

	statsPath := filepath.Join(dir, "stats.csv")
	f, err = os.Create(statsPath)
	if err != nil {
		om.censusFile.Close()
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML for run provenance.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteCensus appends one tick's census rows to the census file.
func (om *OutputManager) WriteCensus(rows []CensusRow) error {
	if om == nil || len(rows) == 0 {
		return nil
	}

	if !om.censusHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(rows, om.censusFile); err != nil {
			return fmt.Errorf("writing census: %w", err)
		}
		om.censusHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(rows, om.censusFile); err != nil {
			return fmt.Errorf("writing census: %w", err)
		}
	}

	return nil
}

// WriteStats appends a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.censusFile != nil {
		if err := om.censusFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.statsFile != nil {
		if err := om.statsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
