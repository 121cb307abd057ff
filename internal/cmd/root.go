package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command of the suggestibility service
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestibility",
		Short: "Suggestibility questionnaire scoring and review service",
		Long: `Scores 36-question suggestibility questionnaires into physical and
emotional percentages, checks answer quality, and runs the clinical
review workflow for assessments that need a second look.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewRederiveCommand())

	return cmd
}
