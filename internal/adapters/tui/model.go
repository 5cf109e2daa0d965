package tui

import (
	"context"
	"errors"

	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type screen int

const (
	screenChecking screen = iota
	screenGate
	screenWorkspace
)

// Deps are the session components the program drives.
type Deps struct {
	Resolver *application.Resolver
	Gate     *application.Gate
	Router   *application.Router
	Logger   zerolog.Logger
}

type resolvedMsg struct {
	state domain.SessionState
}

type loginDoneMsg struct {
	result application.LoginResult
	err    error
}

type registerDoneMsg struct {
	message string
	err     error
}

type loadedMsg struct{}

type opDoneMsg struct {
	notice  string
	isError bool
}

type loggedOutMsg struct {
	state domain.SessionState
}

// Model is the interactive workspace. It starts in the checking state and
// renders nothing until the stored session has been resolved.
type Model struct {
	ctx  context.Context
	deps Deps

	screen    screen
	state     domain.SessionState
	workspace application.Workspace

	form formState

	command   textinput.Model
	notice    string
	noticeErr bool
	busy      bool
	width     int

	reloadToken uint64
}

func New(ctx context.Context, deps Deps) Model {
	return Model{
		ctx:     ctx,
		deps:    deps,
		screen:  screenChecking,
		state:   domain.CheckingSession(),
		form:    newFormState(deps.Gate.Active(), formLogin),
		command: newCommandInput(),
	}
}

func (m Model) Init() tea.Cmd {
	resolver, ctx := m.deps.Resolver, m.ctx
	return func() tea.Msg {
		return resolvedMsg{state: resolver.Resolve(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.workspace != nil {
				m.workspace.Close()
			}
			return m, tea.Quit
		}
		switch m.screen {
		case screenGate:
			return m.updateGate(msg)
		case screenWorkspace:
			return m.updateWorkspace(msg)
		default:
			return m, nil
		}
	case resolvedMsg:
		return m.enter(msg.state)
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, nil
		}
		state, err := m.deps.Resolver.Authenticate(msg.result.Role, msg.result.User)
		if err != nil {
			m.deps.Logger.Warn().Err(err).Msg("authenticate after login")
			return m, nil
		}
		return m.enter(state)
	case registerDoneMsg:
		m.busy = false
		if msg.err == nil {
			email := m.form.value(fieldEmail)
			m.form = newFormState(m.deps.Gate.Active(), formLogin)
			m.form.setValue(fieldEmail, email)
		}
		return m, nil
	case loadedMsg:
		m.busy = false
		return m, nil
	case opDoneMsg:
		m.busy = false
		m.notice = msg.notice
		m.noticeErr = msg.isError
		return m, nil
	case loggedOutMsg:
		m.busy = false
		m.workspace = nil
		m.notice = ""
		m.command.SetValue("")
		return m.enter(msg.state)
	default:
		return m, nil
	}
}

// enter moves the program to the screen matching state.
func (m Model) enter(state domain.SessionState) (tea.Model, tea.Cmd) {
	m.state = state
	switch state.Status {
	case domain.SessionAuthenticated:
		ws, err := m.deps.Router.Mount(state)
		if err != nil {
			m.deps.Logger.Warn().Err(err).Str("role", string(state.Role)).Msg("mount workspace")
			if errors.Is(err, domain.ErrNoWorkspace) {
				return m, m.logoutCmd(nil)
			}
			m.screen = screenGate
			return m, nil
		}
		m.workspace = ws
		m.screen = screenWorkspace
		m.busy = true
		return m, loadCmd(m.ctx, ws)
	case domain.SessionUnauthenticated:
		m.screen = screenGate
		if err := m.deps.Gate.Activate(m.deps.Gate.Active()); err == nil {
			m.form = newFormState(m.deps.Gate.Active(), formLogin)
		}
		return m, nil
	default:
		m.screen = screenChecking
		return m, nil
	}
}

func loadCmd(ctx context.Context, ws application.Workspace) tea.Cmd {
	return func() tea.Msg {
		ws.Load(ctx)
		return loadedMsg{}
	}
}

// logoutCmd ends the session through the workspace when one is mounted, or
// through the resolver otherwise.
func (m Model) logoutCmd(ws application.Workspace) tea.Cmd {
	resolver, ctx := m.deps.Resolver, m.ctx
	return func() tea.Msg {
		if ws != nil {
			return loggedOutMsg{state: ws.Logout(ctx)}
		}
		return loggedOutMsg{state: resolver.Logout(ctx)}
	}
}

// Screen names the current screen for callers that inspect the final model.
func (m Model) Screen() string {
	switch m.screen {
	case screenGate:
		return "gate"
	case screenWorkspace:
		return "workspace"
	default:
		return "checking"
	}
}

func (m Model) State() domain.SessionState {
	return m.state
}
