package main

import (
	"testing"

	"github.com/chazu/meshstep/pkg/config"
	"github.com/chazu/meshstep/pkg/logger"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		ro   rootOptions
		want logger.Config
	}{
		{"defaults", config.Config{}, rootOptions{}, logger.Config{}},
		{"config json", config.Config{LogJSON: true}, rootOptions{}, logger.Config{JSON: true}},
		{"flag json", config.Config{}, rootOptions{logJSON: true}, logger.Config{JSON: true}},
		{"debug and json", config.Config{Debug: true}, rootOptions{logJSON: true}, logger.Config{Debug: true, JSON: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loggerConfig(tt.cfg, &tt.ro)
			if got.Debug != tt.want.Debug || got.JSON != tt.want.JSON || got.Writer != nil {
				t.Errorf("loggerConfig = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLogJSONFlag(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.PersistentFlags().Parse([]string{"--log-json"}); err != nil {
		t.Fatal(err)
	}
	f := cmd.PersistentFlags().Lookup("log-json")
	if f == nil || f.Value.String() != "true" {
		t.Fatalf("--log-json flag = %v", f)
	}
}
