package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	var sheetURL string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the distinct projects recorded in the tabell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(sheetURL)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			projects, err := rt.client.FetchProjects(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheetURL, "sheet-url", "", "Google Sheets URL of the tabell (overrides GOOGLE_SHEET_URL)")
	return cmd
}
