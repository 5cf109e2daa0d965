package tui

import (
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/adapters/render"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Underline(true)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(16)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	busyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

func (m Model) View() string {
	switch m.screen {
	case screenGate:
		return m.gateView()
	case screenWorkspace:
		return m.workspaceView()
	default:
		return ""
	}
}

func (m Model) gateView() string {
	active := m.deps.Gate.Active()
	tabs := make([]string, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		if role == active {
			tabs = append(tabs, activeTabStyle.Render(role.Label()))
		} else {
			tabs = append(tabs, tabStyle.Render(role.Label()))
		}
	}

	heading := "Log in"
	if m.form.mode == formSignup {
		heading = "Sign up"
	}

	lines := []string{
		titleStyle.Render("care"),
		strings.Join(tabs, "   "),
		"",
		titleStyle.Render(fmt.Sprintf("%s as %s", heading, active.Label())),
	}
	for _, field := range m.form.fields {
		lines = append(lines, labelStyle.Render(field.label)+field.input.View())
	}

	tab := m.deps.Gate.Tab(active)
	if tab.Loading || m.busy {
		lines = append(lines, "", busyStyle.Render("Working..."))
	} else if tab.Message != "" {
		lines = append(lines, "", noticeLine(tab.Message, tab.IsError))
	}

	lines = append(lines, "", helpStyle.Render("ctrl+t switch role   ctrl+s log in/sign up   tab next field   enter submit   ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) workspaceView() string {
	page := render.Page{Title: "care", Width: m.width}
	page.Blocks = append(page.Blocks, render.IdentityBlock(m.state))

	switch ws := m.workspace.(type) {
	case *application.PatientWorkspace:
		page.Blocks = append(page.Blocks, patientBlocks(ws)...)
	case *application.DoctorWorkspace:
		page.Blocks = append(page.Blocks, doctorBlocks(ws)...)
	case *application.PharmacistWorkspace:
		page.Blocks = append(page.Blocks, pharmacistBlocks(ws)...)
	}

	lines := []string{page.String(), ""}
	if m.busy {
		lines = append(lines, busyStyle.Render("Loading..."))
	} else if m.notice != "" {
		lines = append(lines, noticeLine(m.notice, m.noticeErr))
	}
	lines = append(lines, m.command.View(), helpStyle.Render("enter send   ctrl+r refresh   ctrl+l log out   /help commands   ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func panelBlocks[T any](snapshot application.PanelSnapshot[T], block render.Block) []render.Block {
	blocks := []render.Block{block}
	if snapshot.Err != "" {
		blocks = append(blocks, render.NoticeBlock(snapshot.Err, true))
	}
	return blocks
}

func patientBlocks(ws *application.PatientWorkspace) []render.Block {
	var blocks []render.Block
	if doctor, errText := ws.Doctor(); len(doctor) > 0 || errText != "" {
		blocks = append(blocks, render.RecordBlock("Your doctor", doctor))
		if errText != "" {
			blocks = append(blocks, render.NoticeBlock(errText, true))
		}
	}

	messages := ws.Messages.Snapshot()
	blocks = append(blocks, panelBlocks(messages, render.MessagesBlock("Messages", ws.Messages.Lines()))...)

	prescriptions := ws.Prescriptions.Snapshot()
	blocks = append(blocks, panelBlocks(prescriptions, render.PrescriptionsBlock(prescriptions.Items, render.PrescriptionOptions{ShowCode: true}))...)
	return blocks
}

func doctorBlocks(ws *application.DoctorWorkspace) []render.Block {
	patients := ws.Patients.Snapshot()
	selected := ws.Selected()

	var blocks []render.Block
	if query := ws.Search.Query(); query != "" {
		blocks = append(blocks, render.TextBlock(fmt.Sprintf("Search %s: %q", ws.Search.Field(), query)))
	}
	blocks = append(blocks, panelBlocks(patients, render.PatientsBlock(ws.VisiblePatients(), selected))...)

	if selected == "" {
		return append(blocks, render.NoticeBlock(domain.MsgSelectPatient, false))
	}

	if profile := ws.SelectedProfile(); profile != nil {
		blocks = append(blocks, render.RecordBlock("Patient profile", profile))
	}
	if thread := ws.Thread(); thread != nil {
		blocks = append(blocks, panelBlocks(thread.Snapshot(), render.MessagesBlock("Messages", thread.Lines()))...)
	}
	prescriptions := ws.Prescriptions.Snapshot()
	blocks = append(blocks, panelBlocks(prescriptions, render.PrescriptionsBlock(prescriptions.Items, render.PrescriptionOptions{}))...)
	return blocks
}

func pharmacistBlocks(ws *application.PharmacistWorkspace) []render.Block {
	prescriptions := ws.Prescriptions.Snapshot()

	var blocks []render.Block
	if query := ws.Search.Query(); query != "" {
		blocks = append(blocks, render.TextBlock(fmt.Sprintf("Search %s: %q", ws.Search.Field(), query)))
	}
	return append(blocks, panelBlocks(prescriptions, render.PrescriptionsBlock(ws.VisiblePrescriptions(), render.PrescriptionOptions{
		Heading:     "Outstanding prescriptions",
		SelectedID:  ws.Selected(),
		ShowPatient: true,
	}))...)
}

func noticeLine(message string, isError bool) string {
	return render.Page{Blocks: []render.Block{render.NoticeBlock(message, isError)}}.String()
}
