package config

import "strconv"

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the heron.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// Environment variables that override file configuration.
const (
	EnvOutputDir = "HERON_OUTPUT_DIR"
	EnvClean     = "HERON_CLEAN"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "report.output_dir"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration.
// Nil fields mean "not set" (do not override); a *string pointing to ""
// means "override to empty string."
type CLIOverrides struct {
	OutputDir *string
	Clean     *bool
	PlanPath  *string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// fileConfig is the parsed heron.toml (nil if no file was found); envFn looks
// up environment variables; overrides carries CLI flag values (nil fields
// mean "not set").
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{Links: map[string]string{}, Labels: map[string]string{}},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = NewDefaults()
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	// Layer 1: defaults as the base.
	setString(&rc.Config.Report.OutputDir, defaults.Report.OutputDir, "report.output_dir", SourceDefault, rc.Sources)
	rc.Config.Report.Clean = defaults.Report.Clean
	rc.Sources["report.clean"] = SourceDefault
	setString(&rc.Config.Plan.Path, defaults.Plan.Path, "plan.path", SourceDefault, rc.Sources)
	mergeMap(rc.Config.Links, defaults.Links, "links", SourceDefault, rc.Sources)
	mergeMap(rc.Config.Labels, defaults.Labels, "labels", SourceDefault, rc.Sources)

	// Layer 2: file config on top. Non-zero values override; maps merge keys.
	if fileConfig != nil {
		setString(&rc.Config.Report.OutputDir, fileConfig.Report.OutputDir, "report.output_dir", SourceFile, rc.Sources)
		if fileConfig.Report.Clean {
			rc.Config.Report.Clean = true
			rc.Sources["report.clean"] = SourceFile
		}
		setString(&rc.Config.Plan.Path, fileConfig.Plan.Path, "plan.path", SourceFile, rc.Sources)
		mergeMap(rc.Config.Links, fileConfig.Links, "links", SourceFile, rc.Sources)
		mergeMap(rc.Config.Labels, fileConfig.Labels, "labels", SourceFile, rc.Sources)
	}

	// Layer 3: environment variables.
	if v, ok := envFn(EnvOutputDir); ok && v != "" {
		rc.Config.Report.OutputDir = v
		rc.Sources["report.output_dir"] = SourceEnv
	}
	if v, ok := envFn(EnvClean); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			rc.Config.Report.Clean = b
			rc.Sources["report.clean"] = SourceEnv
		}
	}
	if v, ok := envFn(EnvPlanPathVar); ok && v != "" {
		rc.Config.Plan.Path = v
		rc.Sources["plan.path"] = SourceEnv
	}

	// Layer 4: CLI overrides.
	if overrides.OutputDir != nil {
		rc.Config.Report.OutputDir = *overrides.OutputDir
		rc.Sources["report.output_dir"] = SourceCLI
	}
	if overrides.Clean != nil {
		rc.Config.Report.Clean = *overrides.Clean
		rc.Sources["report.clean"] = SourceCLI
	}
	if overrides.PlanPath != nil {
		rc.Config.Plan.Path = *overrides.PlanPath
		rc.Sources["plan.path"] = SourceCLI
	}

	return rc
}

// EnvPlanPathVar mirrors testplan.EnvPlanPath without importing the package.
const EnvPlanPathVar = "HERON_TESTPLAN_PATH"

// setString assigns val to dst and records the source when val is non-empty.
func setString(dst *string, val, field string, src ConfigSource, sources map[string]ConfigSource) {
	if val == "" {
		return
	}
	*dst = val
	sources[field] = src
}

// mergeMap copies src entries into dst, recording per-key sources.
func mergeMap(dst, src map[string]string, field string, source ConfigSource, sources map[string]ConfigSource) {
	for k, v := range src {
		dst[k] = v
		sources[field+"."+k] = source
	}
}
