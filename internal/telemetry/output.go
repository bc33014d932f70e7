package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/zeusync/scenecore/internal/core/config"
)

// Recorder writes window reports to <dir>/frames.csv. A nil Recorder is valid and
// discards everything.
type Recorder struct {
	dir           string
	file          *os.File
	headerWritten bool
}

// NewRecorder creates dir and frames.csv inside it. An empty dir disables output
// and returns a nil Recorder.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	return &Recorder{dir: dir, file: f}, nil
}

func (r *Recorder) WriteReport(rep Report) error {
	if r == nil {
		return nil
	}
	rows := []Report{rep}
	if !r.headerWritten {
		if err := gocsv.Marshal(rows, r.file); err != nil {
			return fmt.Errorf("writing frames: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, r.file); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

// WriteConfig saves the run configuration next to the CSV.
func (r *Recorder) WriteConfig(cfg *config.Config) error {
	if r == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(r.dir, "config.yaml"))
}

func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// ReadReports loads a frames.csv written by Recorder.
func ReadReports(path string) ([]Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []Report
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}
