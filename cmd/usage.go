package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var usageReset bool

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show or reset the accumulated token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if usageReset {
			env.Usage.Reset(cmd.Context())
		}

		out := map[string]any{
			"usage":            env.Usage.Total(),
			"estimatedCostUSD": env.Usage.EstimateCost(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "zero the running total before printing")
	rootCmd.AddCommand(usageCmd)
}
