// Command meshstep converts triangle meshes (STL) into STEP AP214 exchange
// files, either as a faceted solid, as parametric primitives planned from
// the mesh's features, or both.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/meshstep/pkg/config"
	"github.com/chazu/meshstep/pkg/logger"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
	logJSON    bool
}

func newRootCmd() *cobra.Command {
	var ro rootOptions

	cmd := &cobra.Command{
		Use:          "meshstep",
		Short:        "meshstep: mesh to STEP converter",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "YAML config file (optional)")
	cmd.PersistentFlags().BoolVar(&ro.debug, "debug", false, "enable verbose logging to stderr")
	cmd.PersistentFlags().BoolVar(&ro.logJSON, "log-json", false, "write logs as JSON lines")

	cmd.AddCommand(
		analyzeCmd(&ro),
		convertCmd(&ro),
		sampleCmd(&ro),
		historyCmd(&ro),
	)
	return cmd
}

// withApp loads the configuration, applies command-level overrides, installs
// the logger and hands a ready App to fn. The logger is torn down when fn
// returns.
func withApp(ro *rootOptions, fn func(*App) error, overrides ...func(*config.Config)) error {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		o(&cfg)
	}

	cleanup := logger.Setup(loggerConfig(cfg, ro))
	defer cleanup()

	log := logger.L()
	log.Debug("config.loaded", "output_dir", cfg.OutputDir, "max_faces", cfg.MaxFaces)

	return fn(NewApp(cfg, WithAppLogger(log)))
}

// loggerConfig merges the config file and environment with the flags. A flag
// can only switch an option on.
func loggerConfig(cfg config.Config, ro *rootOptions) logger.Config {
	return logger.Config{
		Debug: cfg.Debug || ro.debug,
		JSON:  cfg.LogJSON || ro.logJSON,
	}
}
