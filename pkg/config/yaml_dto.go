package config

import "strings"

// yamlConfig mirrors the config file. Pointer fields distinguish "absent"
// from a zero value.
type yamlConfig struct {
	OutputDir *string    `yaml:"output_dir"`
	Debug     *bool      `yaml:"debug"`
	LogJSON   *bool      `yaml:"log_json"`
	Limits    yamlLimits `yaml:"limits"`
	Hints     yamlHints  `yaml:"hints"`
	Header    yamlHeader `yaml:"header"`
}

type yamlLimits struct {
	MaxVertices *int `yaml:"max_vertices"`
	MaxFaces    *int `yaml:"max_faces"`
}

type yamlHints struct {
	MinAreaFraction *float64 `yaml:"min_area_fraction"`
	MaxPlanes       *int     `yaml:"max_planes"`
}

type yamlHeader struct {
	Author       *string `yaml:"author"`
	Organization *string `yaml:"organization"`
}

// apply copies the fields that are set onto cfg.
func (y yamlConfig) apply(path string, cfg *Config) error {
	if y.OutputDir != nil {
		if strings.TrimSpace(*y.OutputDir) == "" {
			return invalidField(path, "output_dir", "must not be empty")
		}
		cfg.OutputDir = *y.OutputDir
	}
	if y.Debug != nil {
		cfg.Debug = *y.Debug
	}
	if y.LogJSON != nil {
		cfg.LogJSON = *y.LogJSON
	}
	if y.Limits.MaxVertices != nil {
		cfg.MaxVertices = *y.Limits.MaxVertices
	}
	if y.Limits.MaxFaces != nil {
		cfg.MaxFaces = *y.Limits.MaxFaces
	}
	if y.Hints.MinAreaFraction != nil {
		cfg.MinAreaFraction = *y.Hints.MinAreaFraction
	}
	if y.Hints.MaxPlanes != nil {
		cfg.MaxPlanes = *y.Hints.MaxPlanes
	}
	if y.Header.Author != nil {
		cfg.Author = *y.Header.Author
	}
	if y.Header.Organization != nil {
		cfg.Organization = *y.Header.Organization
	}
	return nil
}
