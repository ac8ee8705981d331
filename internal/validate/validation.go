// Package validate checks the ingested splits against the dataset schema
// before any transformation happens.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/ingest"
	"lead-scoring-service/internal/schema"
)

// Report is the persisted validation verdict.
type Report struct {
	Status bool     `json:"status"`
	Issues []string `json:"issues"`
}

type Artifacts struct {
	Status     bool     `json:"status"`
	Issues     []string `json:"issues"`
	ReportPath string   `json:"report_path"`
}

type Stage struct {
	schema *schema.Schema
}

func NewStage(s *schema.Schema) *Stage {
	return &Stage{schema: s}
}

// Run validates both splits and writes <dir>/validation/report.json. A
// failed validation is reported through Artifacts.Status, not an error:
// the orchestrator decides whether to abort.
func (s *Stage) Run(_ context.Context, dir string, ingested *ingest.Artifacts) (*Artifacts, error) {
	train, err := dataset.ReadCSV(ingested.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("read train split: %w", err)
	}
	test, err := dataset.ReadCSV(ingested.TestPath)
	if err != nil {
		return nil, fmt.Errorf("read test split: %w", err)
	}

	var issues []string
	issues = append(issues, s.checkTable("train", train)...)
	issues = append(issues, s.checkTable("test", test)...)

	report := Report{Status: len(issues) == 0, Issues: issues}
	if report.Issues == nil {
		report.Issues = []string{}
	}

	reportPath := filepath.Join(dir, "validation", "report.json")
	if err := writeJSON(reportPath, report); err != nil {
		return nil, err
	}

	if report.Status {
		log.Info("data validation passed")
	} else {
		log.WithField("issues", len(issues)).Warn("data validation failed")
	}

	return &Artifacts{Status: report.Status, Issues: report.Issues, ReportPath: reportPath}, nil
}

func (s *Stage) checkTable(name string, t *dataset.Table) []string {
	var issues []string

	if len(t.Columns) != len(s.schema.Features) {
		issues = append(issues, fmt.Sprintf(
			"%s split: expected %d features, found %d",
			name, len(s.schema.Features), len(t.Columns)))
	}

	for _, feature := range s.schema.NumericalFeatures {
		if t.ColumnIndex(feature) < 0 {
			issues = append(issues, fmt.Sprintf("%s split: missing numerical feature %q", name, feature))
		}
	}
	for _, feature := range s.schema.CategoricalFeatures {
		if t.ColumnIndex(feature) < 0 {
			issues = append(issues, fmt.Sprintf("%s split: missing categorical feature %q", name, feature))
		}
	}
	return issues
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
