package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved portal deployments",
	}

	cmd.AddCommand(
		newProfileAddCmd(app),
		newProfileListCmd(app),
		newProfileUseCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileAddCmd(app *app) *cobra.Command {
	var roleName string
	var activate bool

	cmd := &cobra.Command{
		Use:   "add <name> <base-url>",
		Short: "Save or replace a portal profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := domain.Profile{Name: strings.TrimSpace(args[0]), BaseURL: strings.TrimSpace(args[1])}
			if roleName != "" {
				role, err := domain.ParseRole(roleName)
				if err != nil {
					return err
				}
				profile.Role = role
			}

			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}
			if activate {
				if err := app.profiles.SetActive(cmd.Context(), profile.Name); err != nil {
					return err
				}
			}
			return writeLine(cmd, fmt.Sprintf("Saved profile %s.", profile.Name))
		},
	}

	cmd.Flags().StringVar(&roleName, "role", "", "Role usually used on this portal (patient, doctor, pharmacist)")
	cmd.Flags().BoolVar(&activate, "use", false, "Make this the active profile")

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles; the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				return writeLine(cmd, "No profiles. Add one with `care profile add <name> <base-url>`.")
			}
			active, err := app.profiles.Active(cmd.Context())
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				BorderTop(false).
				BorderBottom(false).
				BorderLeft(false).
				BorderRight(false).
				BorderHeader(false).
				StyleFunc(func(_, _ int) lipgloss.Style { return lipgloss.NewStyle().PaddingRight(1) })
			for _, profile := range profiles {
				marker := " "
				if profile.Name == active {
					marker = "*"
				}
				role := string(profile.Role)
				if role == "" {
					role = "-"
				}
				t.Row(marker+" "+profile.Name, profile.BaseURL, role)
			}
			return writeLine(cmd, t.String())
		},
	}
}

func newProfileUseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.SetActive(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeLine(cmd, fmt.Sprintf("Using profile %s.", args[0]))
		},
	}
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeLine(cmd, fmt.Sprintf("Removed profile %s.", args[0]))
		},
	}
}
