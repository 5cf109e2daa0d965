package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/cobra"
)

type passwordFlags struct {
	value string
	stdin bool
}

func (p *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.value, "password", "", "Account password")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

func (p *passwordFlags) resolve(in io.Reader) (string, error) {
	if !p.stdin {
		return p.value, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// pickRole prefers --role, then the profile's role, then the patient tab.
func pickRole(raw string, tgt target) (domain.Role, error) {
	if raw != "" {
		return domain.ParseRole(raw)
	}
	if tgt.role.Valid() {
		return tgt.role, nil
	}
	return domain.RolePatient, nil
}

func newLoginCmd(app *app) *cobra.Command {
	var roleName string
	var email string
	var password passwordFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a patient, doctor or pharmacist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			role, err := pickRole(roleName, s.target)
			if err != nil {
				return err
			}
			secret, err := password.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			if err := s.gate.Activate(role); err != nil {
				return err
			}
			s.gate.SetCredentials(domain.Credentials{Email: email, Password: secret})

			result, err := s.gate.Login(cmd.Context())
			if err != nil {
				return err
			}

			state, err := s.resolver.Authenticate(result.Role, result.User)
			if err != nil {
				return err
			}
			s.logger.Debug().Str("role", string(state.Role)).Str("id", state.Identity.ID).Msg("logged in")

			return writePage(cmd, app, render.Page{Blocks: []render.Block{render.IdentityBlock(state)}})
		},
	}

	cmd.Flags().StringVar(&roleName, "role", "", "Role to log in as (patient|doctor|pharmacist)")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	password.register(cmd)

	return cmd
}

func newSignupCmd(app *app) *cobra.Command {
	var roleName string
	var reg domain.Registration
	var password passwordFlags

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a portal account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			role, err := pickRole(roleName, s.target)
			if err != nil {
				return err
			}
			reg.Password, err = password.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			if err := s.gate.Activate(role); err != nil {
				return err
			}
			s.gate.SetRegistration(reg)

			message, err := s.gate.Register(cmd.Context())
			if err != nil {
				return err
			}
			return writeLine(cmd, message)
		},
	}

	cmd.Flags().StringVar(&roleName, "role", "", "Role to sign up as (patient|doctor|pharmacist)")
	cmd.Flags().StringVar(&reg.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.DoctorID, "doctor-id", "", "Assigned doctor ID (patients)")
	cmd.Flags().StringVar(&reg.DateOfBirth, "dob", "", "Date of birth (patients)")
	cmd.Flags().StringVar(&reg.PatientHistory, "history", "", "Medical history (patients, optional)")
	cmd.Flags().StringVar(&reg.Specialisation, "specialisation", "", "Specialisation (doctors, optional)")
	password.register(cmd)

	return cmd
}

type whoAmIOutput struct {
	Role string `json:"role"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

func newWhoAmICmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			state := s.resolver.Resolve(cmd.Context())
			if !state.Authenticated() {
				return errNotLoggedIn
			}

			if asJSON {
				return writeJSON(cmd, whoAmIOutput{
					Role: string(state.Role),
					Name: state.Identity.DisplayName,
					ID:   state.Identity.ID,
				})
			}
			return writePage(cmd, app, render.Page{Blocks: []render.Block{render.IdentityBlock(state)}})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the portal session and forget the stored cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			s.resolver.Logout(cmd.Context())
			return writeLine(cmd, "Logged out.")
		},
	}
}
