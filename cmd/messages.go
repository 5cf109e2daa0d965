package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newMessagesCmd(app *app) *cobra.Command {
	var patientID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the conversation between a patient and their doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				thread, err := openThread(cmd, ws, patientID, asJSON)
				if err != nil {
					return err
				}
				return writeThread(cmd, app, thread, asJSON)
			})
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "Patient ID (doctors)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.AddCommand(newMessagesSendCmd(app))

	return cmd
}

func newMessagesSendCmd(app *app) *cobra.Command {
	var patientID string

	cmd := &cobra.Command{
		Use:   "send <text>...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				thread, err := openThread(cmd, ws, patientID, false)
				if err != nil {
					return err
				}
				if _, err := thread.Send(cmd.Context(), strings.Join(args, " ")); err != nil {
					return err
				}
				return writeThread(cmd, app, thread, false)
			})
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "Patient ID (doctors)")

	return cmd
}

// openThread loads the conversation the signed-in role can see: a patient's
// own thread, or the thread with --patient for a doctor.
func openThread(cmd *cobra.Command, ws application.Workspace, patientID string, asJSON bool) (*application.MessageThread, error) {
	switch ws := ws.(type) {
	case *application.PatientWorkspace:
		err := fetch(cmd, asJSON, "Loading messages...", func(ctx context.Context) (string, error) {
			return panelSummary(ws.Messages.Load(ctx), "message")
		})
		return ws.Messages, err
	case *application.DoctorWorkspace:
		err := fetch(cmd, asJSON, "Loading messages...", func(ctx context.Context) (string, error) {
			if err := ws.SelectPatient(ctx, patientID); err != nil {
				return "", err
			}
			return panelSummary(ws.Thread().Snapshot(), "message")
		})
		if err != nil {
			return nil, err
		}
		return ws.Thread(), nil
	default:
		return nil, fmt.Errorf("%w: pharmacists have no message threads", domain.ErrWrongWorkspace)
	}
}

func writeThread(cmd *cobra.Command, app *app, thread *application.MessageThread, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, thread.Lines())
	}
	return writePage(cmd, app, render.Page{Blocks: []render.Block{render.MessagesBlock("Messages", thread.Lines())}})
}
