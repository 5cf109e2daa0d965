package cmd

import (
	"context"
	"strings"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newPatientsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse your patients (doctors)",
	}

	cmd.AddCommand(
		newPatientsListCmd(app),
		newPatientsShowCmd(app),
		newPatientsHistoryCmd(app),
	)

	return cmd
}

// asDoctor runs fn against a doctor workspace.
func asDoctor(cmd *cobra.Command, app *app, fn func(*application.DoctorWorkspace) error) error {
	return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
		doctor, err := workspaceAs[*application.DoctorWorkspace](ws, domain.RoleDoctor)
		if err != nil {
			return err
		}
		return fn(doctor)
	})
}

func newPatientsListCmd(app *app) *cobra.Command {
	var search searchFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the patients assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return asDoctor(cmd, app, func(doctor *application.DoctorWorkspace) error {
				err := fetch(cmd, asJSON, "Loading patients...", func(ctx context.Context) (string, error) {
					return panelSummary(doctor.Patients.Fetch(ctx), "patient")
				})
				if err != nil {
					return err
				}

				items, err := applySearch(doctor.Search, search, doctor.Patients.Snapshot().Items)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{render.PatientsBlock(items, "")}})
			})
		},
	}

	search.register(cmd, "Name, patientID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newPatientsShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <patient-id>",
		Short: "Show a patient's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return asDoctor(cmd, app, func(doctor *application.DoctorWorkspace) error {
				var profile domain.Record
				err := fetch(cmd, asJSON, "Loading profile...", func(ctx context.Context) (string, error) {
					var err error
					profile, err = doctor.Profile(ctx, args[0])
					if err != nil {
						return "", err
					}
					return "Profile of " + profile.String("Name"), nil
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, profile)
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{render.RecordBlock("Patient "+args[0], profile)}})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newPatientsHistoryCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <patient-id> <text>...",
		Short: "Replace a patient's medical history",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return asDoctor(cmd, app, func(doctor *application.DoctorWorkspace) error {
				updated, err := doctor.UpdateHistory(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				if err := writeLine(cmd, "History updated."); err != nil {
					return err
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{render.RecordBlock("Patient "+args[0], updated)}})
			})
		},
	}
}

func newDoctorCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Show the doctor assigned to you (patients)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				patient, err := workspaceAs[*application.PatientWorkspace](ws, domain.RolePatient)
				if err != nil {
					return err
				}

				var doctor domain.Record
				err = fetch(cmd, asJSON, "Loading doctor...", func(ctx context.Context) (string, error) {
					var err error
					doctor, err = patient.LoadDoctor(ctx)
					if err != nil {
						return "", err
					}
					return "Assigned to " + doctor.String("Name"), nil
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, doctor)
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{render.RecordBlock("Your doctor", doctor)}})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
