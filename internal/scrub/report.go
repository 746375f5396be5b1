package scrub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReportFile is written into the pipeline's cache prefix directory.
const ReportFile = "scrub-report.json"

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Report summarizes one pipeline run.
type Report struct {
	Domain   string          `json:"domain"`
	Started  time.Time       `json:"started"`
	Handlers []HandlerResult `json:"handlers"`
}

type HandlerResult struct {
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// WriteReport stores r as dir/scrub-report.json.
func WriteReport(dir string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scrub report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write scrub report: %w", err)
	}
	return nil
}

// ReadReport loads dir/scrub-report.json. A missing file yields an error
// matching fs.ErrNotExist.
func ReadReport(dir string) (Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		return Report{}, fmt.Errorf("read scrub report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode scrub report: %w", err)
	}
	return r, nil
}
