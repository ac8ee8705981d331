// Package schema loads the static dataset declaration that drives the
// validation and transformation stages.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema declares the expected shape of the ingested dataset and the
// column-level directives applied during transformation.
type Schema struct {
	// Features lists every column the raw dataset must carry, target
	// included.
	Features            []string `yaml:"features"`
	NumericalFeatures   []string `yaml:"numerical_features"`
	CategoricalFeatures []string `yaml:"categorical_features"`
	Target              string   `yaml:"target"`

	DropFeatures []string `yaml:"drop_features"`
	// LabelEncoding maps a column to its fixed value->code table. Codes
	// are declared rather than fitted so serving and training agree.
	LabelEncoding  map[string]map[string]float64 `yaml:"label_encoding"`
	OneHotFeatures []string                      `yaml:"one_hot_features"`
	RenameFeatures map[string]string             `yaml:"rename_features"`

	NormalizationFeatures   []string `yaml:"normalization_features"`
	StandardizationFeatures []string `yaml:"standardization_features"`
}

func Load(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) check() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("schema declares no features")
	}
	if s.Target == "" {
		return fmt.Errorf("schema declares no target column")
	}
	if !contains(s.Features, s.Target) {
		return fmt.Errorf("target %q not among declared features", s.Target)
	}
	for col := range s.LabelEncoding {
		if !contains(s.Features, col) {
			return fmt.Errorf("label encoding refers to unknown column %q", col)
		}
	}
	for _, col := range s.OneHotFeatures {
		if !contains(s.Features, col) {
			return fmt.Errorf("one-hot encoding refers to unknown column %q", col)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
