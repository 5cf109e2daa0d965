package cmd

import (
	"fmt"

	"github.com/bnema/care-cli/internal/adapters/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *app) *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive portal: sign in and work in your role's workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			model := tui.New(cmd.Context(), tui.Deps{
				Resolver: s.resolver,
				Gate:     s.gate,
				Router:   s.router,
				Logger:   s.logger,
			})

			options := []tea.ProgramOption{
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			}
			if !inline {
				options = append(options, tea.WithAltScreen())
			}

			if _, err := tea.NewProgram(model, options...).Run(); err != nil {
				return fmt.Errorf("run interactive portal: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "Render in the terminal instead of the alternate screen")

	return cmd
}
