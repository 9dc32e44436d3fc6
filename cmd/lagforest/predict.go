package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soltixdb/lagforest/internal/frame"
	"github.com/soltixdb/lagforest/internal/services"
)

type predictOptions struct {
	future           string
	output           string
	predictionColumn string
}

func newPredictCmd(global *globalOptions) *cobra.Command {
	opts := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast every trained entity found in a future-covariate table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), cmd, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.future, "future", "", "CSV file with future rows per entity (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Output CSV file, - for stdout")
	cmd.Flags().StringVar(&opts.predictionColumn, "prediction-column", "", "Name of the forecast column (overrides data.prediction_column)")
	_ = cmd.MarkFlagRequired("future")
	return cmd
}

func runPredict(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *predictOptions) error {
	a, err := newApp(global, true)
	if err != nil {
		return err
	}
	svc, err := a.forecastService()
	if err != nil {
		return err
	}

	future, err := readModelCSV(svc, opts.future)
	if err != nil {
		return err
	}

	resp, err := svc.Forecast(ctx, &services.ForecastRequest{
		Future:           future,
		PredictionColumn: opts.predictionColumn,
	})
	if err != nil {
		return err
	}

	if opts.output == "" || opts.output == "-" {
		return resp.Frame.WriteCSV(cmd.OutOrStdout())
	}
	if err := resp.Frame.WriteCSVFile(opts.output); err != nil {
		return err
	}
	a.logger.Info("Forecast written", "path", opts.output, "rows", resp.Count, "entities", resp.Entities)
	return nil
}

// readModelCSV reads path keeping the default model's identifier and time
// columns as text
func readModelCSV(svc *services.ForecastService, path string) (*frame.Frame, error) {
	info, err := svc.ModelInfo("")
	if err != nil {
		return nil, err
	}
	text := []string{info.IDColumn}
	if info.TimeColumn != "" {
		text = append(text, info.TimeColumn)
	}
	f, err := frame.ReadCSVFile(path, text...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return f, nil
}
