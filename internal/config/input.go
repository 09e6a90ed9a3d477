package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/Puppetdog/sp-calculator-sub000/internal/validation"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML form of a program catalog: the programs and the MEB of
// every country they serve.
type Catalog struct {
	Programs  []domain.Program  `yaml:"programs"`
	MEBValues []domain.MEBValue `yaml:"meb_values"`
}

// InputParser handles parsing of submission and catalog files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadSubmission loads a form submission from a YAML or JSON file. The
// submission is not validated here; validation happens when it is
// transformed into eligibility params.
func (ip *InputParser) LoadSubmission(filename string) (*domain.FormSubmission, error) {
	var sub domain.FormSubmission
	if err := decodeFile(filename, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// LoadBeneficiary loads a flat beneficiary record from a YAML or JSON file
func (ip *InputParser) LoadBeneficiary(filename string) (*domain.Beneficiary, error) {
	var b domain.Beneficiary
	if err := decodeFile(filename, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadProgram loads a single program definition and validates it
func (ip *InputParser) LoadProgram(filename string) (*domain.Program, error) {
	var p domain.Program
	if err := decodeFile(filename, &p); err != nil {
		return nil, err
	}
	if err := validation.ValidateProgram(p); err != nil {
		return nil, fmt.Errorf("program validation failed: %w", err)
	}
	return &p, nil
}

// LoadCatalog loads and validates a program catalog from a YAML or JSON file
func (ip *InputParser) LoadCatalog(filename string) (*Catalog, error) {
	var catalog Catalog
	if err := decodeFile(filename, &catalog); err != nil {
		return nil, err
	}

	if err := ip.ValidateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}
	return &catalog, nil
}

// ValidateCatalog validates every program and MEB value of a catalog
func (ip *InputParser) ValidateCatalog(catalog *Catalog) error {
	if len(catalog.Programs) == 0 {
		return fmt.Errorf("no programs provided")
	}

	ids := make(map[string]bool)
	for i, program := range catalog.Programs {
		if program.ID != "" {
			if ids[program.ID] {
				return fmt.Errorf("program %d (%s): duplicate id %q", i, program.Name, program.ID)
			}
			ids[program.ID] = true
		}
		if err := validation.ValidateProgram(program); err != nil {
			return fmt.Errorf("program %d (%s) validation failed: %w", i, program.Name, err)
		}
	}

	countries := make(map[string]bool)
	for i, meb := range catalog.MEBValues {
		if err := ip.validateMEB(meb); err != nil {
			return fmt.Errorf("meb value %d validation failed: %w", i, err)
		}
		code := strings.ToUpper(strings.TrimSpace(meb.CountryCode))
		if countries[code] {
			return fmt.Errorf("meb value %d: duplicate country %s", i, code)
		}
		countries[code] = true
	}
	return nil
}

// validateMEB validates a single MEB value
func (ip *InputParser) validateMEB(meb domain.MEBValue) error {
	if strings.TrimSpace(meb.CountryCode) == "" {
		return fmt.Errorf("country code is required")
	}
	if meb.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// decodeFile reads a YAML file into dst. JSON is accepted as a YAML subset.
func decodeFile(filename string, dst any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
