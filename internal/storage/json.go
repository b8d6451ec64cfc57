package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"caserun/internal/domain"
)

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// Save writes the run output to the configured JSON file. A missing run ID
// is generated.
func (s *JSONStorage) Save(output *domain.RunOutput) error {
	if output.Meta.RunID == "" {
		output.Meta.RunID = NewRunID()
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last run output from the configured JSON file.
func (s *JSONStorage) Load() (*domain.RunOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// MarkResolved updates one failure's resolved marker and saves the output.
func (s *JSONStorage) MarkResolved(output *domain.RunOutput, index int, resolved bool) error {
	if index < 0 || index >= len(output.Details) {
		return fmt.Errorf("failure %d out of range (have %d)", index, len(output.Details))
	}
	output.Details[index].Resolved = resolved
	return s.Save(output)
}
