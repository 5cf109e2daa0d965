package render

import (
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const DefaultWidth = 72

// Block is one section of a page.
type Block interface {
	render(s styles, width int) string
}

type blockFunc func(s styles, width int) string

func (f blockFunc) render(s styles, width int) string {
	return f(s, width)
}

// Page is a titled stack of blocks rendered top to bottom.
type Page struct {
	Title    string
	Subtitle string
	Width    int
	Blocks   []Block
}

func (p Page) String() string {
	return renderView(p, newStyles())
}

func renderView(p Page, s styles) string {
	width := p.Width
	if width <= 0 {
		width = DefaultWidth
	}

	lines := make([]string, 0, len(p.Blocks)+2)
	if p.Title != "" {
		lines = append(lines, s.title.Render(p.Title))
	}
	if p.Subtitle != "" {
		lines = append(lines, s.header.Render(p.Subtitle))
	}
	for i, block := range p.Blocks {
		rendered := block.render(s, width)
		if rendered == "" {
			continue
		}
		if i > 0 || len(lines) > 0 {
			rendered = s.section.Render(rendered)
		}
		lines = append(lines, rendered)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// IdentityBlock shows who is signed in. It renders nothing unless the session
// is authenticated.
func IdentityBlock(state domain.SessionState) Block {
	return blockFunc(func(s styles, _ int) string {
		if !state.Authenticated() {
			return ""
		}
		name := state.Identity.DisplayName
		if name == "" {
			name = domain.DefaultDisplayName
		}
		line := s.heading.Render(fmt.Sprintf("Welcome, %s", name)) +
			" " + s.header.Render(fmt.Sprintf("(%s)", state.Role.Label()))
		if state.Identity.ID != "" {
			line += " " + s.header.Render("id "+state.Identity.ID)
		}
		return line
	})
}

// NoticeBlock renders a gate or panel message. Empty messages render nothing.
func NoticeBlock(message string, isError bool) Block {
	return blockFunc(func(s styles, _ int) string {
		if message == "" {
			return ""
		}
		if isError {
			return s.warning.Render(message)
		}
		return s.notice.Render(message)
	})
}

// MessagesBlock lays out a thread with the signed-in user's messages on the
// right and the counterpart's on the left.
func MessagesBlock(heading string, lines []domain.MessageLine) Block {
	return blockFunc(func(s styles, width int) string {
		out := []string{s.heading.Render(heading)}
		if len(lines) == 0 {
			out = append(out, s.empty.Render("No messages yet."))
			return lipgloss.JoinVertical(lipgloss.Left, out...)
		}

		bubbleWidth := width * 2 / 3
		for _, line := range lines {
			label := s.peerLabel.Render(line.Label)
			if line.Side == domain.SideRight {
				label = s.selfLabel.Render(line.Label)
			}
			header := label
			if line.Timestamp != "" {
				header += " " + s.timestamp.Render(line.Timestamp)
			}
			body := s.bubble.Width(bubbleWidth).Render(line.Body)

			align := lipgloss.Left
			if line.Side == domain.SideRight {
				align = lipgloss.Right
				body = s.bubble.Width(bubbleWidth).Align(lipgloss.Right).Render(line.Body)
			}
			entry := lipgloss.JoinVertical(align, header, body)
			out = append(out, lipgloss.PlaceHorizontal(width, align, entry))
		}
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	})
}

type PrescriptionOptions struct {
	Heading     string
	SelectedID  string
	ShowCode    bool
	ShowPatient bool
}

func PrescriptionsBlock(items []domain.Prescription, opts PrescriptionOptions) Block {
	return blockFunc(func(s styles, _ int) string {
		heading := opts.Heading
		if heading == "" {
			heading = "Prescriptions"
		}
		out := []string{s.heading.Render(fmt.Sprintf("%s (%d)", heading, len(items)))}
		if len(items) == 0 {
			out = append(out, s.empty.Render("No prescriptions."))
			return lipgloss.JoinVertical(lipgloss.Left, out...)
		}

		for _, item := range items {
			out = append(out, prescriptionLine(item, opts, s))
			if item.Instructions != "" {
				out = append(out, "    "+s.detail.Render(item.Instructions))
			}
		}
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	})
}

func prescriptionLine(item domain.Prescription, opts PrescriptionOptions, s styles) string {
	marker := "  "
	name := s.detail.Render(item.MedicineName)
	if opts.SelectedID != "" && item.ID == opts.SelectedID {
		marker = s.selected.Render("> ")
		name = s.selected.Render(item.MedicineName)
	}

	parts := []string{marker + s.key.Render("#"+item.ID), name}
	if opts.ShowPatient && item.PatientID != "" {
		parts = append(parts, s.header.Render("patient "+item.PatientID))
	}
	if item.DurationType != "" {
		parts = append(parts, s.header.Render(string(item.DurationType)))
	}
	if item.DatePrescribed != "" {
		parts = append(parts, s.timestamp.Render(item.DatePrescribed))
	}
	if opts.ShowCode && item.CollectionCode != "" {
		parts = append(parts, s.key.Render("code")+" "+s.code.Render(item.CollectionCode))
	}

	return strings.Join(parts, "  ")
}

func PatientsBlock(items []domain.Patient, selectedID string) Block {
	return blockFunc(func(s styles, _ int) string {
		out := []string{s.heading.Render(fmt.Sprintf("Patients (%d)", len(items)))}
		if len(items) == 0 {
			out = append(out, s.empty.Render("No patients."))
			return lipgloss.JoinVertical(lipgloss.Left, out...)
		}

		for _, item := range items {
			marker := "  "
			name := s.detail.Render(item.Name)
			if selectedID != "" && item.ID == selectedID {
				marker = s.selected.Render("> ")
				name = s.selected.Render(item.Name)
			}
			out = append(out, marker+s.key.Render("#"+item.ID)+"  "+name)
		}
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	})
}

// RecordBlock prints a loosely typed portal object as sorted key/value lines.
func RecordBlock(heading string, record domain.Record) Block {
	return blockFunc(func(s styles, _ int) string {
		out := []string{s.heading.Render(heading)}
		if len(record) == 0 {
			out = append(out, s.empty.Render("Nothing to show."))
			return lipgloss.JoinVertical(lipgloss.Left, out...)
		}

		keys := record.Keys()
		keyWidth := 0
		for _, key := range keys {
			keyWidth = max(keyWidth, lipgloss.Width(key))
		}
		for _, key := range keys {
			label := s.key.Width(keyWidth + 1).Render(key + ":")
			out = append(out, label+" "+s.detail.Render(record.String(key)))
		}
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	})
}

// TextBlock renders a single plain line.
func TextBlock(text string) Block {
	return blockFunc(func(s styles, _ int) string {
		return s.detail.Render(text)
	})
}
