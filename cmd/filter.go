package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/centroid"
)

// newFilterCmd creates the 'filter' subcommand, a standalone helper that
// narrows a centroid reference table to one state.
func newFilterCmd() *cobra.Command {
	var (
		input string
		state string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter a CVEGEO-keyed centroid table by state code",
		RunE: func(_ *cobra.Command, _ []string) error {
			if input == "" || state == "" || out == "" {
				return fmt.Errorf("--input, --state, and --out are all required")
			}
			filtered, err := centroid.LoadState(input, state)
			if err != nil {
				return err
			}
			if err := filtered.WriteCSV(out); err != nil {
				return err
			}
			logger.Info("wrote filtered centroids",
				zap.String("state", state),
				zap.Int("rows", filtered.Len()),
				zap.String("path", out),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "centroid CSV path")
	cmd.Flags().StringVarP(&state, "state", "s", "", "3-character state code")
	cmd.Flags().StringVarP(&out, "out", "o", "", "filtered CSV path")
	return cmd
}
