// Package schema describes which columns of a combined long-format table
// identify entities, hold the target and carry future covariates.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema is read-only once loaded
type Schema struct {
	IDColumn         string   `yaml:"id_column" json:"id_column" validate:"required"`
	TimeColumn       string   `yaml:"time_column,omitempty" json:"time_column,omitempty"`
	Target           string   `yaml:"target" json:"target" validate:"required,nefield=IDColumn"`
	FutureCovariates []string `yaml:"future_covariates,omitempty" json:"future_covariates,omitempty" validate:"dive,required"`
	ForecastLength   int      `yaml:"forecast_length" json:"forecast_length" validate:"gte=1"`
}

// Load reads and validates a schema file. JSON files are accepted too since
// they are valid YAML.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema document
func Parse(data []byte) (Schema, error) {
	var s Schema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Schema{}, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// Validate checks required fields and that no column plays two roles
func (s Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid schema: field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid schema: %w", err)
	}

	seen := map[string]string{s.IDColumn: "id_column", s.Target: "target"}
	if s.TimeColumn != "" {
		if role, dup := seen[s.TimeColumn]; dup {
			return fmt.Errorf("invalid schema: column %q is both time_column and %s", s.TimeColumn, role)
		}
		seen[s.TimeColumn] = "time_column"
	}
	for _, c := range s.FutureCovariates {
		if role, dup := seen[c]; dup {
			return fmt.Errorf("invalid schema: covariate %q is already used as %s", c, role)
		}
		seen[c] = "future_covariates"
	}
	return nil
}

// TextColumns returns the columns that must never be parsed as numbers
func (s Schema) TextColumns() []string {
	cols := []string{s.IDColumn}
	if s.TimeColumn != "" {
		cols = append(cols, s.TimeColumn)
	}
	return cols
}

// Equal reports whether two schemas describe the same layout
func (s Schema) Equal(o Schema) bool {
	return s.IDColumn == o.IDColumn &&
		s.TimeColumn == o.TimeColumn &&
		s.Target == o.Target &&
		s.ForecastLength == o.ForecastLength &&
		slices.Equal(s.FutureCovariates, o.FutureCovariates)
}
