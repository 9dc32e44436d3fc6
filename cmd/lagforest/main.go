// Command lagforest trains, evaluates and serves multi-series lag forest
// forecasting models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soltixdb/lagforest/internal/utils"
)

var (
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	configPath string
	modelDir   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "lagforest",
		Short: "Multi-series lag forest forecasting",
		Long: `lagforest fits one tree-ensemble regressor per entity of a combined,
long-format history table, using lagged target values and future
covariates as features, and forecasts every entity recursively.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", utils.Version, GitCommit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.modelDir, "model-dir", "", "Model directory (overrides data.model_dir)")

	root.AddCommand(newTrainCmd(opts))
	root.AddCommand(newPredictCmd(opts))
	root.AddCommand(newEvaluateCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}
