package config

// DefaultOutputDir is where results land when no configuration overrides it.
const DefaultOutputDir = "heron-results"

// NewDefaults returns a Config populated with all default values.
func NewDefaults() *Config {
	return &Config{
		Report: ReportConfig{
			OutputDir: DefaultOutputDir,
		},
		Links:  map[string]string{},
		Labels: map[string]string{},
	}
}

// applyDefaults fills fields a loaded config left empty.
func applyDefaults(cfg *Config) {
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = DefaultOutputDir
	}
	if cfg.Links == nil {
		cfg.Links = map[string]string{}
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}
