package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	test string
}

func newEvaluateCmd(global *globalOptions) *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the saved model against future rows with known targets",
		Long: `evaluate forecasts the rows of --test and compares the predictions with
the target column of the same rows, printing MAE, RMSE and MAPE overall and
per entity as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), cmd, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.test, "test", "", "CSV file with future covariates and actual targets (required)")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func runEvaluate(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *evaluateOptions) error {
	a, err := newApp(global, true)
	if err != nil {
		return err
	}
	svc, err := a.forecastService()
	if err != nil {
		return err
	}

	test, err := readModelCSV(svc, opts.test)
	if err != nil {
		return err
	}
	eval, err := svc.Evaluate(ctx, "", test)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(eval)
}
