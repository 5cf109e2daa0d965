package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	query string
	field string
}

func (f *searchFlags) register(cmd *cobra.Command, fields string) {
	cmd.Flags().StringVar(&f.query, "search", "", "Fuzzy search query")
	cmd.Flags().StringVar(&f.field, "field", "", "Field to search ("+fields+")")
}

func applySearch[T any](filter *domain.SearchFilter[T], flags searchFlags, items []T) ([]T, error) {
	if flags.field != "" {
		if err := filter.SetField(flags.field); err != nil {
			return nil, fmt.Errorf("%w: use one of %s", err, strings.Join(filter.Fields(), ", "))
		}
	}
	filter.SetQuery(flags.query)
	return filter.Apply(items), nil
}

func newPrescriptionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prescriptions",
		Aliases: []string{"rx"},
		Short:   "List, write and collect prescriptions",
	}

	cmd.AddCommand(
		newPrescriptionsListCmd(app),
		newPrescriptionsCreateCmd(app),
		newPrescriptionsCollectCmd(app),
	)

	return cmd
}

func newPrescriptionsListCmd(app *app) *cobra.Command {
	var search searchFlags
	var patientID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outstanding prescriptions visible to the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				panel, filter, opts, err := prescriptionView(ws)
				if err != nil {
					return err
				}
				if patientID != "" {
					opts.ShowPatient = false
				}

				err = fetch(cmd, asJSON, "Loading prescriptions...", func(ctx context.Context) (string, error) {
					if patientID != "" {
						return panelSummary(panel.SetScope(ctx, application.Scope[domain.Prescription]{
							Field: func(p domain.Prescription) string { return p.PatientID },
							Value: patientID,
						}), "prescription")
					}
					return panelSummary(panel.Fetch(ctx), "prescription")
				})
				if err != nil {
					return err
				}

				items, err := applySearch(filter, search, panel.Snapshot().Items)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{render.PrescriptionsBlock(items, opts)}})
			})
		},
	}

	search.register(cmd, "MedicineName, prescriptionID, patientID")
	cmd.Flags().StringVar(&patientID, "patient", "", "Only prescriptions for this patient")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// prescriptionView picks the prescriptions panel, search and display options
// for the signed-in role. Only patients see their collection codes.
func prescriptionView(ws application.Workspace) (*application.Panel[domain.Prescription], *domain.SearchFilter[domain.Prescription], render.PrescriptionOptions, error) {
	switch ws := ws.(type) {
	case *application.PatientWorkspace:
		return ws.Prescriptions, domain.NewSearchFilter(domain.PrescriptionSearchFields...),
			render.PrescriptionOptions{Heading: "Your prescriptions", ShowCode: true}, nil
	case *application.DoctorWorkspace:
		return ws.Prescriptions, domain.NewSearchFilter(domain.PrescriptionSearchFields...),
			render.PrescriptionOptions{Heading: "Prescriptions you wrote", ShowPatient: true}, nil
	case *application.PharmacistWorkspace:
		return ws.Prescriptions, ws.Search,
			render.PrescriptionOptions{Heading: "Outstanding prescriptions", ShowPatient: true}, nil
	default:
		return nil, nil, render.PrescriptionOptions{}, fmt.Errorf("%w: no prescriptions for %s", domain.ErrWrongWorkspace, ws.Role().Label())
	}
}

func prescriptionsFor(items []domain.Prescription, patientID string) []domain.Prescription {
	var out []domain.Prescription
	for _, item := range items {
		if item.PatientID == patientID {
			out = append(out, item)
		}
	}
	return out
}

func newPrescriptionsCreateCmd(app *app) *cobra.Command {
	var prescription domain.NewPrescription
	var duration string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a prescription for one of your patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			durationType, err := domain.ParseDurationType(duration)
			if err != nil {
				return err
			}
			prescription.DurationType = durationType

			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				doctor, err := workspaceAs[*application.DoctorWorkspace](ws, domain.RoleDoctor)
				if err != nil {
					return err
				}

				snapshot, err := doctor.CreatePrescription(cmd.Context(), prescription)
				if err != nil {
					return err
				}

				items := prescriptionsFor(snapshot.Items, prescription.PatientID)
				if err := writeLine(cmd, "Prescription created."); err != nil {
					return err
				}
				return writePage(cmd, app, render.Page{Blocks: []render.Block{
					render.PrescriptionsBlock(items, render.PrescriptionOptions{Heading: "Prescriptions for patient " + prescription.PatientID}),
				}})
			})
		},
	}

	cmd.Flags().StringVar(&prescription.PatientID, "patient", "", "Patient ID")
	cmd.Flags().StringVar(&prescription.PharmacistID, "pharmacist", "", "Pharmacist ID")
	cmd.Flags().StringVar(&prescription.MedicineName, "medicine", "", "Medicine name")
	cmd.Flags().StringVar(&prescription.Instructions, "instructions", "", "Dosage instructions")
	cmd.Flags().StringVar(&prescription.DatePrescribed, "date", "", "Date prescribed (default: today)")
	cmd.Flags().StringVar(&duration, "duration", string(domain.DurationTemporary), "Lifetime or Temporary")

	return cmd
}

func newPrescriptionsCollectCmd(app *app) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "collect <prescription-id>",
		Short: "Hand over a prescription against its collection code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(_ *session, ws application.Workspace) error {
				pharmacist, err := workspaceAs[*application.PharmacistWorkspace](ws, domain.RolePharmacist)
				if err != nil {
					return err
				}

				if err := domain.ValidateCollectionCode(strings.TrimSpace(code)); err != nil {
					return err
				}

				err = fetch(cmd, false, "Loading prescriptions...", func(ctx context.Context) (string, error) {
					return panelSummary(pharmacist.Prescriptions.Fetch(ctx), "outstanding prescription")
				})
				if err != nil {
					return err
				}

				if err := pharmacist.Select(args[0]); err != nil {
					if errors.Is(err, domain.ErrPrescriptionNotFound) {
						return fmt.Errorf("prescription %s is not outstanding: %w", args[0], err)
					}
					return err
				}

				if _, err := pharmacist.Collect(cmd.Context(), code); err != nil {
					return err
				}
				return writeLine(cmd, "Prescription collected.")
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Six digit collection code from the patient")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
