package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/charmbracelet/log"
)

//go:embed templates/heron.toml.tmpl
var templateFS embed.FS

// TemplateVars holds variables substituted into the starter heron.toml.
type TemplateVars struct {
	// OutputDir is the results directory written into [report].
	OutputDir string
	// Clean pre-fills [report] clean.
	Clean bool
	// PlanPath, when non-empty, adds a [plan] section pointing at it.
	PlanPath string
}

// RenderConfigTemplate writes a starter heron.toml into destDir and returns
// its path. When force is false an existing file is left untouched and an
// error is returned.
func RenderConfigTemplate(destDir string, vars TemplateVars, force bool) (string, error) {
	if vars.OutputDir == "" {
		vars.OutputDir = DefaultOutputDir
	}

	destFile := filepath.Join(destDir, ConfigFileName)
	if _, err := os.Stat(destFile); err == nil && !force {
		return "", fmt.Errorf("config file %s already exists (use --force to overwrite)", destFile)
	}

	content, err := templateFS.ReadFile("templates/heron.toml.tmpl")
	if err != nil {
		return "", fmt.Errorf("reading embedded template: %w", err)
	}

	tmpl, err := template.New(ConfigFileName).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing config template: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", destDir, err)
	}
	if err := os.WriteFile(destFile, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", destFile, err)
	}

	log.Debug("created config file", "path", destFile)
	return destFile, nil
}
