package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "care",
		Short:         "care: patient, doctor and pharmacist portal client",
		Long:          "care signs you in to a care-coordination portal as a patient, doctor or pharmacist and gives you that role's workspace: messages, prescriptions, patients and collection.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "Portal profile to use (default: active profile)")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Portal base URL, overrides any profile")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	app, err := wireApp(opts)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newSignupCmd(app),
		newWhoAmICmd(app),
		newLogoutCmd(app),
		newMessagesCmd(app),
		newPrescriptionsCmd(app),
		newPatientsCmd(app),
		newDoctorCmd(app),
		newProfileCmd(app),
		newTUICmd(app),
	)

	return rootCmd
}
