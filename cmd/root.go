package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "mwa",
		Short:         "Mobile wallet adapter bridge (mwa): launch wallets and relay wallet requests",
		Long:          "mwa bridges a mobile wallet adapter request/response protocol to a host runtime. It launches wallet endpoints, checks whether one is installed, and serves the client and wallet method channels over a JSON-lines stream.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.flags.configDir, "config-dir", "", "Config directory (default ~/.config/mwa)")
	rootCmd.PersistentFlags().StringVar(&app.flags.logLevel, "log-level", "", "Log level override (debug|info|warn|error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newLaunchCmd(app),
		newAvailableCmd(app),
		newServeCmd(app),
		newDemoCmd(app),
	)

	return rootCmd
}
