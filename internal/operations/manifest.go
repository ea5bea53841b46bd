package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gwmerge/internal/dataprocessing"
)

// Run status values
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Report describes one pipeline run. It doubles as the JSON run manifest.
type Report struct {
	RunID      string    `json:"run_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   string    `json:"duration"`
	ParentDir  string    `json:"parent_dir"`
	Marker     string    `json:"marker"`
	OutputPath string    `json:"output_path,omitempty"`

	// States holds one entry per discovered folder, in discovery order
	States []dataprocessing.StateReport `json:"states"`

	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ProcessedStates returns the states that contributed data
func (r *Report) ProcessedStates() []dataprocessing.StateReport {
	var out []dataprocessing.StateReport
	for _, s := range r.States {
		if !s.Skipped() {
			out = append(out, s)
		}
	}
	return out
}

// SkippedStates returns the states excluded from the merge
func (r *Report) SkippedStates() []dataprocessing.StateReport {
	var out []dataprocessing.StateReport
	for _, s := range r.States {
		if s.Skipped() {
			out = append(out, s)
		}
	}
	return out
}

// finish stamps the end of the run
func (r *Report) finish(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
	r.Status = StatusCompleted
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

// SaveToFile writes the report as indented JSON
func (r *Report) SaveToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile reads a report written by SaveToFile
func LoadManifestFromFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &r, nil
}
