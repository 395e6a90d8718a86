package broadcast

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/notify"
	"github.com/0097eo/chama-web/internal/theme"
)

// DoneMsg signals the composer should close. Sent reports whether an
// announcement actually went out.
type DoneMsg struct {
	Sent bool
}

// sendResultMsg carries the outcome of the broadcast request.
type sendResultMsg struct {
	err error
}

const sendTimeout = 30 * time.Second

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies. Keeping them
// here also preserves the draft when the form is rebuilt after a send
// failure.
type formBindings struct {
	title   string
	message string
}

// Model is the broadcast composer: a title/message form gated to
// chama officials. Validation runs locally before anything is sent,
// mirroring the server's rules.
type Model struct {
	service *notify.Service
	chamaID string

	form *huh.Form
	fb   *formBindings

	sending bool
	errMsg  string
	spinner spinner.Model

	width, height int
}

// New creates a broadcast composer for the given chama.
func New(service *notify.Service, chamaID string, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		service: service,
		chamaID: chamaID,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("At least 3 characters").
				Value(&m.fb.title).
				Validate(validateMinLen("Title", 3)),
			huh.NewText().
				Title("Message").
				Description("At least 10 characters; sent to all active members").
				Value(&m.fb.message).
				Validate(validateMinLen("Message", 10)),
		),
	).WithWidth(m.formWidth())
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the composer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sendResultMsg:
		m.sending = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Broadcast failed: %v", msg.err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return DoneMsg{Sent: true} }

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.sending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.sending = true
		m.errMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.send())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{Sent: false} }
	}

	return m, cmd
}

// send returns a command that validates and posts the announcement.
// The sender's copy arrives back through the push channel like any
// other broadcast.
func (m Model) send() tea.Cmd {
	service := m.service
	req := api.BroadcastRequest{
		ChamaID: m.chamaID,
		Title:   m.fb.title,
		Message: m.fb.message,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return sendResultMsg{err: service.Broadcast(ctx, req)}
	}
}

// View renders the composer.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Broadcast Announcement")

	var body string
	if m.sending {
		body = fmt.Sprintf("%s Sending...", m.spinner.View())
	} else {
		body = m.form.View()
		if m.errMsg != "" {
			body = theme.ErrorStyle.Render(m.errMsg) + "\n\n" + body
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateMinLen(fieldName string, min int) func(string) error {
	return func(s string) error {
		if utf8.RuneCountInString(strings.TrimSpace(s)) < min {
			return fmt.Errorf("%s must be at least %d characters", fieldName, min)
		}
		return nil
	}
}
