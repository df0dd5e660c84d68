// Package config loads, validates, and resolves heron.toml configuration.
// Values are layered default < file < environment < CLI flag, and every
// resolved value remembers which layer produced it.
package config

// Config is the top-level configuration structure mapping to heron.toml.
type Config struct {
	Report ReportConfig `toml:"report"`
	Plan   PlanConfig   `toml:"plan"`

	// Links maps link types to URL templates with a "{}" placeholder,
	// e.g. issue = "https://tracker.example.com/browse/{}".
	Links map[string]string `toml:"links"`

	// Labels are applied to every test result in addition to the labels
	// the producer emits.
	Labels map[string]string `toml:"labels"`
}

// ReportConfig maps to the [report] section in heron.toml.
type ReportConfig struct {
	// OutputDir is the directory result, container, and attachment files
	// are written into.
	OutputDir string `toml:"output_dir"`

	// Clean removes the output directory before a run.
	Clean bool `toml:"clean"`
}

// PlanConfig maps to the [plan] section in heron.toml.
type PlanConfig struct {
	// Path points at a selection plan file. The HERON_TESTPLAN_PATH
	// environment variable takes precedence when set.
	Path string `toml:"path"`
}
