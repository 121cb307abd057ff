package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the 'suggestibility seed' command
func NewSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a questionnaire version and make it active",
		Long: `Loads a questionnaire seed (the embedded HMI questionnaire unless --file
or QUESTIONNAIRE_SEED names another), checks that its lookup table covers
every reachable score pair, stores it if it is new and activates it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer rt.Close()

			path := file
			if path == "" {
				path = rt.cfg.QuestionnaireSeed
			}
			seed, err := catalog.LoadSeedFile(path)
			if err != nil {
				return err
			}

			id, err := rt.services.Questionnaire().SeedAndActivate(cmd.Context(), seed)
			if err != nil {
				return fmt.Errorf("failed to seed questionnaire: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "questionnaire %s is active\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a questionnaire seed YAML")
	return cmd
}
