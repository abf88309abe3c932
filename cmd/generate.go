package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llmpulse/radar/internal/model"
)

var generateDate string

// generateCmd runs the daily practice generation chain once, for use by a
// scheduler (cron). Output is machine-readable JSON; a total provider
// failure exits non-zero so the scheduler can alert.
var generateCmd = &cobra.Command{
	Use:          "generate",
	Short:        "Generate and persist the daily practice record",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		date := generateDate
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}

		rec, err := env.Generator.GenerateForDate(cmd.Context(), date)
		if err != nil {
			zap.L().Error("generation failed", zap.String("date", date), zap.Error(err))
			out := map[string]any{
				"status": model.GenerationFailed,
				"date":   date,
				"error":  err.Error(),
			}
			if encErr := json.NewEncoder(os.Stdout).Encode(out); encErr != nil {
				zap.L().Warn("write failure payload", zap.Error(encErr))
			}
			// The payload already carries the error; returning it non-silenced
			// would print it twice. The deferred Close still runs before the
			// process exits non-zero.
			cmd.SilenceErrors = true
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "target date YYYY-MM-DD (default today UTC)")
	rootCmd.AddCommand(generateCmd)
}
