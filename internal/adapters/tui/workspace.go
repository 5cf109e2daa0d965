package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const msgUnknownCommand = "Unknown command. Type /help for the list."

func newCommandInput() textinput.Model {
	input := newInput("message, or /help")
	input.Prompt = "> "
	input.CharLimit = 1024
	input.Focus()
	return input
}

func (m Model) updateWorkspace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlL:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.logoutCmd(m.workspace)
	case tea.KeyCtrlR:
		if m.busy {
			return m, nil
		}
		return m.reload()
	case tea.KeyEsc:
		m.command.SetValue("")
		m.notice = ""
		return m, nil
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		line := strings.TrimSpace(m.command.Value())
		m.command.SetValue("")
		return m.execute(line)
	}

	var cmd tea.Cmd
	m.command, cmd = m.command.Update(msg)
	return m, cmd
}

// execute runs one command bar entry. Lines starting with "/" are commands;
// anything else is sent as a message to the open thread.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	m.notice = ""
	m.noticeErr = false

	name, arg := splitCommand(line)
	switch name {
	case "":
		return m.send(arg)
	case "help":
		m.notice = helpText(m.workspace)
		return m, nil
	case "logout":
		m.busy = true
		return m, m.logoutCmd(m.workspace)
	case "quit":
		m.workspace.Close()
		return m, tea.Quit
	case "refresh":
		return m.reload()
	}

	switch ws := m.workspace.(type) {
	case *application.PatientWorkspace:
		return m.executePatient(ws, name)
	case *application.DoctorWorkspace:
		return m.executeDoctor(ws, name, arg)
	case *application.PharmacistWorkspace:
		return m.executePharmacist(ws, name, arg)
	}
	return m.fail(errors.New(msgUnknownCommand))
}

func splitCommand(line string) (string, string) {
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (m Model) send(body string) (tea.Model, tea.Cmd) {
	var thread *application.MessageThread
	switch ws := m.workspace.(type) {
	case *application.PatientWorkspace:
		thread = ws.Messages
	case *application.DoctorWorkspace:
		thread = ws.Thread()
		if thread == nil {
			return m.fail(domain.NewValidationError(domain.MsgSelectPatient))
		}
	default:
		return m.fail(errors.New(msgUnknownCommand))
	}

	return m.run(func(ctx context.Context) (string, error) {
		_, err := thread.Send(ctx, body)
		return "", err
	})
}

func (m Model) executePatient(ws *application.PatientWorkspace, name string) (tea.Model, tea.Cmd) {
	switch name {
	case "doctor":
		return m.run(func(ctx context.Context) (string, error) {
			_, err := ws.LoadDoctor(ctx)
			return "", err
		})
	}
	return m.fail(errors.New(msgUnknownCommand))
}

func (m Model) executeDoctor(ws *application.DoctorWorkspace, name, arg string) (tea.Model, tea.Cmd) {
	switch name {
	case "search":
		ws.Search.SetQuery(arg)
		return m, nil
	case "field":
		if err := ws.Search.SetField(arg); err != nil {
			return m.fail(domain.NewValidationError("Search by " + strings.Join(ws.Search.Fields(), " or ") + "."))
		}
		return m, nil
	case "select":
		return m.run(func(ctx context.Context) (string, error) {
			return "", ws.SelectPatient(ctx, arg)
		})
	case "clear":
		return m.run(func(ctx context.Context) (string, error) {
			ws.ClearSelection(ctx)
			return "", nil
		})
	case "profile":
		id := ws.Selected()
		if id == "" {
			return m.fail(domain.NewValidationError(domain.MsgSelectPatient))
		}
		return m.run(func(ctx context.Context) (string, error) {
			_, err := ws.Profile(ctx, id)
			return "", err
		})
	case "history":
		id := ws.Selected()
		return m.run(func(ctx context.Context) (string, error) {
			_, err := ws.UpdateHistory(ctx, id, arg)
			if err != nil {
				return "", err
			}
			return "History updated.", nil
		})
	case "prescribe":
		prescription, err := parsePrescription(arg)
		if err != nil {
			return m.fail(err)
		}
		return m.run(func(ctx context.Context) (string, error) {
			_, err := ws.CreatePrescription(ctx, prescription)
			if err != nil {
				return "", err
			}
			return "Prescription created.", nil
		})
	}
	return m.fail(errors.New(msgUnknownCommand))
}

// parsePrescription reads "<pharmacist id> <medicine> | <instructions> | <duration>".
func parsePrescription(arg string) (domain.NewPrescription, error) {
	parts := strings.Split(arg, "|")
	head := strings.TrimSpace(parts[0])
	pharmacistID, medicine, _ := strings.Cut(head, " ")

	prescription := domain.NewPrescription{
		PharmacistID: strings.TrimSpace(pharmacistID),
		MedicineName: strings.TrimSpace(medicine),
	}
	if len(parts) > 1 {
		prescription.Instructions = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		duration, err := domain.ParseDurationType(parts[2])
		if err != nil {
			return domain.NewPrescription{}, err
		}
		prescription.DurationType = duration
	}
	return prescription, nil
}

func (m Model) executePharmacist(ws *application.PharmacistWorkspace, name, arg string) (tea.Model, tea.Cmd) {
	switch name {
	case "search":
		ws.Search.SetQuery(arg)
		return m, nil
	case "field":
		if err := ws.Search.SetField(arg); err != nil {
			return m.fail(domain.NewValidationError("Search by " + strings.Join(ws.Search.Fields(), " or ") + "."))
		}
		return m, nil
	case "select":
		if err := ws.Select(arg); err != nil {
			return m.fail(domain.NewValidationError(domain.MsgSelectPrescription))
		}
		return m, nil
	case "collect":
		return m.run(func(ctx context.Context) (string, error) {
			_, err := ws.Collect(ctx, arg)
			if err != nil {
				return "", err
			}
			return "Prescription collected.", nil
		})
	}
	return m.fail(errors.New(msgUnknownCommand))
}

// run performs op off the update loop and reports its outcome as a notice.
func (m Model) run(op func(ctx context.Context) (string, error)) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx := m.ctx
	return m, func() tea.Msg {
		notice, err := op(ctx)
		if err != nil {
			return opDoneMsg{notice: domain.UserMessage(err, err.Error()), isError: true}
		}
		return opDoneMsg{notice: notice}
	}
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.notice = domain.UserMessage(err, err.Error())
	m.noticeErr = true
	return m, nil
}

// reload bumps the reload token and hands it to every panel of the workspace.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.busy = true
	m.reloadToken++
	ctx, ws, token := m.ctx, m.workspace, m.reloadToken
	return m, func() tea.Msg {
		ws.Reload(ctx, token)
		return loadedMsg{}
	}
}

func helpText(ws application.Workspace) string {
	common := "/refresh  /logout  /quit"
	switch ws.(type) {
	case *application.PatientWorkspace:
		return "Type a message to your doctor. /doctor  " + common
	case *application.DoctorWorkspace:
		return "/search <text>  /field <name>  /select <patient id>  /clear  /profile  /history <text>  /prescribe <pharmacist id> <medicine> | <instructions> | <duration>  " + common
	case *application.PharmacistWorkspace:
		return "/search <text>  /field <name>  /select <prescription id>  /collect <code>  " + common
	}
	return common
}
