package tui

import (
	"context"

	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formMode int

const (
	formLogin formMode = iota
	formSignup
)

const (
	fieldName           = "name"
	fieldEmail          = "email"
	fieldPassword       = "password"
	fieldDoctorID       = "doctor"
	fieldDateOfBirth    = "dob"
	fieldHistory        = "history"
	fieldSpecialisation = "specialisation"
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

type formState struct {
	role   domain.Role
	mode   formMode
	fields []formField
	focus  int
}

func newFormState(role domain.Role, mode formMode) formState {
	f := formState{role: role, mode: mode}
	add := func(key, label, placeholder string, secret bool) {
		input := newInput(placeholder)
		if secret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '*'
		}
		f.fields = append(f.fields, formField{key: key, label: label, input: input})
	}

	if mode == formSignup {
		add(fieldName, "Name", "Full name", false)
	}
	add(fieldEmail, "Email", "you@example.com", false)
	add(fieldPassword, "Password", "", true)
	if mode == formSignup {
		switch role {
		case domain.RolePatient:
			add(fieldDoctorID, "Doctor ID", "ID of your doctor", false)
			add(fieldDateOfBirth, "Date of birth", "YYYY-MM-DD", false)
			add(fieldHistory, "History", "optional", false)
		case domain.RoleDoctor:
			add(fieldSpecialisation, "Specialisation", "optional", false)
		}
	}

	f.setFocus(0)
	return f
}

func newInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.CharLimit = 256
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}

func (f *formState) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

func (f formState) value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return field.input.Value()
		}
	}
	return ""
}

func (f *formState) setValue(key string, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
		}
	}
}

func (f formState) credentials() domain.Credentials {
	return domain.Credentials{Email: f.value(fieldEmail), Password: f.value(fieldPassword)}
}

func (f formState) registration() domain.Registration {
	return domain.Registration{
		Name:           f.value(fieldName),
		Email:          f.value(fieldEmail),
		Password:       f.value(fieldPassword),
		DoctorID:       f.value(fieldDoctorID),
		DateOfBirth:    f.value(fieldDateOfBirth),
		PatientHistory: f.value(fieldHistory),
		Specialisation: f.value(fieldSpecialisation),
	}
}

func nextRole(role domain.Role) domain.Role {
	for i, candidate := range domain.Roles {
		if candidate == role {
			return domain.Roles[(i+1)%len(domain.Roles)]
		}
	}
	return domain.Roles[0]
}

func (m Model) updateGate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlT:
		role := nextRole(m.deps.Gate.Active())
		if err := m.deps.Gate.Activate(role); err != nil {
			return m, nil
		}
		m.form = newFormState(role, m.form.mode)
		return m, nil
	case tea.KeyCtrlS:
		mode := formSignup
		if m.form.mode == formSignup {
			mode = formLogin
		}
		m.form = newFormState(m.deps.Gate.Active(), mode)
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.form.setFocus(m.form.focus + 1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.setFocus(m.form.focus - 1)
		return m, nil
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		return m.submitGate()
	}

	if len(m.form.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	field := &m.form.fields[m.form.focus]
	field.input, cmd = field.input.Update(msg)
	return m, cmd
}

func (m Model) submitGate() (tea.Model, tea.Cmd) {
	gate, ctx := m.deps.Gate, m.ctx
	if m.form.mode == formSignup {
		gate.SetRegistration(m.form.registration())
		m.busy = true
		return m, registerCmd(ctx, gate)
	}
	gate.SetCredentials(m.form.credentials())
	m.busy = true
	return m, loginCmd(ctx, gate)
}

func loginCmd(ctx context.Context, gate *application.Gate) tea.Cmd {
	return func() tea.Msg {
		result, err := gate.Login(ctx)
		return loginDoneMsg{result: result, err: err}
	}
}

func registerCmd(ctx context.Context, gate *application.Gate) tea.Cmd {
	return func() tea.Msg {
		message, err := gate.Register(ctx)
		return registerDoneMsg{message: message, err: err}
	}
}
