package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = fmt.Errorf("%w: run `care login` first", domain.ErrNotAuthenticated)

// fetch runs op behind a spinner on stderr, or silently for JSON output. op
// returns a one-line summary of what it loaded.
func fetch(cmd *cobra.Command, asJSON bool, label string, op func(context.Context) (string, error)) error {
	if asJSON {
		_, err := op(cmd.Context())
		return err
	}
	return runLoading(cmd.Context(), cmd.ErrOrStderr(), label, op)
}

// panelSummary reports a settled panel as its item count, or its error.
func panelSummary[T any](snapshot application.PanelSnapshot[T], noun string) (string, error) {
	if err := panelError(snapshot); err != nil {
		return "", err
	}
	return counted(len(snapshot.Items), noun), nil
}

// openWorkspace resolves the stored session and mounts the workspace for its
// role. Nothing is fetched; each command loads the panels it shows.
func openWorkspace(cmd *cobra.Command, s *session) (application.Workspace, error) {
	state := s.resolver.Resolve(cmd.Context())
	if !state.Authenticated() {
		return nil, errNotLoggedIn
	}

	ws, err := s.router.Mount(state)
	if err != nil {
		if errors.Is(err, domain.ErrNoWorkspace) {
			s.resolver.Logout(cmd.Context())
		}
		return nil, err
	}
	return ws, nil
}

func workspaceAs[W application.Workspace](ws application.Workspace, role domain.Role) (W, error) {
	typed, ok := ws.(W)
	if !ok {
		var zero W
		return zero, fmt.Errorf("%w: this command needs a %s session, signed in as %s",
			domain.ErrWrongWorkspace, role.Label(), ws.Role().Label())
	}
	return typed, nil
}

// withWorkspace connects, mounts the workspace and hands it to run. The
// workspace is closed when run returns.
func withWorkspace(cmd *cobra.Command, app *app, run func(*session, application.Workspace) error) error {
	s, err := app.connect(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ws, err := openWorkspace(cmd, s)
	if err != nil {
		return err
	}
	defer ws.Close()

	return run(s, ws)
}

func panelError[T any](snapshot application.PanelSnapshot[T]) error {
	if snapshot.Status == application.PanelError {
		return errors.New(snapshot.Err)
	}
	return nil
}

func writePage(cmd *cobra.Command, app *app, page render.Page) error {
	rendered, err := app.pageRenderer(page)
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeLine(cmd *cobra.Command, line string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
