package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newLaunchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <uri>",
		Short: "Hand a wallet URI to the platform's default handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.launcher.Attach(app.opener, app.resolver)
			defer app.launcher.Detach()

			if err := app.launcher.Launch(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Launched wallet handler")
			return err
		},
	}
}

func newAvailableCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "available",
		Short: "Report whether a wallet endpoint handler is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.launcher.Attach(app.opener, app.resolver)
			defer app.launcher.Detach()

			available := app.launcher.IsEndpointAvailable(cmd.Context())
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"endpoint":  app.launcher.EndpointURI(),
					"available": available,
				})
			}

			state := "not available"
			if available {
				state = "available"
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wallet endpoint %s: %s\n", app.launcher.EndpointURI(), state)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
