package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/pipeline"
)

func main() {
	// Load .env if present; EASYETL_DB_* vars configure the db source/sink.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "easyetl",
		Short:         "run and validate easyetl pipeline specs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(runCmd(), validateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <spec.json>",
		Short: "execute a pipeline spec end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadSpec(args[0])
			if err != nil {
				return err
			}

			dbConfig, err := easyetl.DBConfigFromEnv()
			if err != nil {
				return err
			}

			runner := pipeline.New(pipeline.Config{DB: dbConfig, Log: true})
			result, err := runner.Run(context.Background(), spec)
			if err != nil {
				return err
			}

			fmt.Printf("pipeline %s completed (run %s): %d rows extracted, %d rows loaded in %v\n",
				result.PipelineId, result.RunId, result.RowsExtracted, result.RowsLoaded, result.Duration)
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec.json>",
		Short: "validate a pipeline spec without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadSpec(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("pipeline spec %s is valid\n", spec.Id())
			return nil
		},
	}
}

func loadSpec(path string) (*pipeline.Spec, error) {
	specData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return pipeline.NewSpec(specData)
}
