package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "report.output_dir"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation, semantic validation, and unknown key
// detection.
//
// meta is the TOML metadata from BurntSushi/toml; it may be nil when no file
// was loaded. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateReport(vr, &cfg.Report)
	validatePlan(vr, &cfg.Plan)
	validateLinks(vr, cfg.Links)
	validateLabels(vr, cfg.Labels)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateReport checks the [report] section.
func validateReport(vr *ValidationResult, r *ReportConfig) {
	if r.OutputDir == "" {
		addError(vr, "report.output_dir", "must not be empty")
		return
	}

	// Refusing to clean a parent of the working tree.
	if r.Clean {
		if abs, err := filepath.Abs(r.OutputDir); err == nil && abs == string(filepath.Separator) {
			addError(vr, "report.output_dir", "refusing to clean the filesystem root")
		}
	}
}

// validatePlan checks the [plan] section.
func validatePlan(vr *ValidationResult, p *PlanConfig) {
	if p.Path == "" {
		return
	}
	if _, err := os.Stat(p.Path); err != nil {
		addWarning(vr, "plan.path", fmt.Sprintf("file %q does not exist", p.Path))
	}
}

// validateLinks checks every [links] template.
func validateLinks(vr *ValidationResult, links map[string]string) {
	for name, tmpl := range links {
		field := "links." + name
		if name == "" {
			addError(vr, "links", "link type must not be empty")
			continue
		}
		if !strings.Contains(tmpl, "{}") {
			addError(vr, field,
				fmt.Sprintf("template %q has no {} placeholder", tmpl))
		}
	}
}

// validateLabels checks the [labels] section.
func validateLabels(vr *ValidationResult, labels map[string]string) {
	for name, value := range labels {
		if name == "" {
			addError(vr, "labels", "label name must not be empty")
			continue
		}
		if value == "" {
			addWarning(vr, "labels."+name, "label value is empty")
		}
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
