// Command themisd serves the oracle scripts to a host over gRPC and
// runs single invocations from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/config"
	"github.com/blockberries/themis/script"
)

// app carries the state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	scripts []*script.Script
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "themisd",
		Short: "themisd - deterministic oracle scripts for social account verification",
		Long: `themisd runs the oracle scripts that link social and domain accounts to
chain addresses. Each invocation has two phases: prepare plans the single
data-source request, execute aggregates the responses the host collected.

Use "serve" to expose the scripts to a host over gRPC, or "prepare" and
"execute" to run one invocation locally.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "themis.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newPrepareCmd(a),
		newExecuteCmd(a),
		newScriptsCmd(a),
	)
	return root
}

// init loads the configuration, builds the logger and the scripts.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	level, err := cfg.Logging.ZapLevel()
	if err != nil {
		return err
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Logging.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	a.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	a.scripts, err = script.Scripts(cat)
	if err != nil {
		return err
	}
	return nil
}

// registry returns the scripts as the interface the server consumes.
func (a *app) registry() []themis.Script {
	out := make([]themis.Script, len(a.scripts))
	for i, s := range a.scripts {
		out[i] = s
	}
	return out
}

func (a *app) lookup(name string) (*script.Script, error) {
	for _, s := range a.scripts {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown script %q", name)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
