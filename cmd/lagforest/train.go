package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soltixdb/lagforest/internal/queue"
	"github.com/soltixdb/lagforest/internal/schema"
	"github.com/soltixdb/lagforest/internal/services"
)

type trainOptions struct {
	history    string
	schemaPath string
}

// trainSummary is printed to stdout after a successful run
type trainSummary struct {
	RunID     string   `json:"run_id"`
	Model     string   `json:"model"`
	Path      string   `json:"path"`
	Entities  int      `json:"entities"`
	Skipped   []string `json:"skipped,omitempty"`
	Published bool     `json:"published"`
	Elapsed   string   `json:"elapsed"`
}

func newTrainCmd(global *globalOptions) *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit one model per entity and save them to the model directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd.Context(), cmd, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.history, "history", "", "CSV file with the combined history table (required)")
	cmd.Flags().StringVar(&opts.schemaPath, "schema", "", "Schema YAML file (overrides schema_path)")
	_ = cmd.MarkFlagRequired("history")
	return cmd
}

func runTrain(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *trainOptions) error {
	a, err := newApp(global, true)
	if err != nil {
		return err
	}

	schemaPath := opts.schemaPath
	if schemaPath == "" {
		schemaPath = a.cfg.SchemaPath
	}
	if schemaPath == "" {
		return fmt.Errorf("a schema is required: pass --schema or set schema_path")
	}
	sch, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}

	params, err := services.ParamsFromConfig(a.cfg.Hyperparameters)
	if err != nil {
		return err
	}

	var publisher queue.Publisher
	if a.cfg.Training.Publish && a.cfg.Queue.Enabled {
		p, err := queue.NewPublisher(a.cfg.Queue)
		if err != nil {
			return fmt.Errorf("failed to connect to queue: %w", err)
		}
		defer func() { _ = p.Close() }()
		publisher = p
	}

	svc := services.NewTrainingService(a.logger, publisher, nil, nil, services.TrainingOptions{
		Workers:      a.cfg.Training.Workers,
		AllowPartial: a.cfg.Training.AllowPartial,
		Timeout:      a.cfg.Training.Timeout,
		Subject:      a.cfg.Queue.Subject,
	})

	result, err := svc.Train(ctx, &services.TrainRequest{
		HistoryPath: opts.history,
		Schema:      sch,
		Params:      params,
		ModelDir:    a.cfg.Data.ModelDir,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(trainSummary{
		RunID:     result.Model.RunID,
		Model:     result.Model.String(),
		Path:      result.Path,
		Entities:  result.Model.Registry.Len(),
		Skipped:   result.Model.Skipped,
		Published: result.Published,
		Elapsed:   result.Elapsed.String(),
	})
}
