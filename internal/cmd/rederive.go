package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/spf13/cobra"
)

// NewRederiveCommand creates the 'suggestibility rederive' command
func NewRederiveCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "rederive",
		Short: "Recompute derived scores of stored assessments",
		Long: `Recomputes score breakdowns and quality metrics from each stored
assessment's raw answers and its own questionnaire version. Review state
is never changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			rt, err := newRuntime(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer rt.Close()

			operator := models.Actor{ID: models.SystemActorID, Role: models.RoleAdmin}
			result, err := rt.services.Quality().Rederive(cmd.Context(), operator, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d, updated %d, flagged %d, failed %d\n",
				result.Processed, result.Updated, result.Flagged, result.Failed)
			for _, id := range result.FailedIDs {
				fmt.Fprintf(out, "  failed: %s\n", id)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d assessments could not be re-derived", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of assessments to process (0 for all)")
	return cmd
}
