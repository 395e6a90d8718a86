package chamalist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/theme"
	"github.com/0097eo/chama-web/internal/ui"
)

// ChamaSelectedMsg is emitted when the user picks a chama to work in.
type ChamaSelectedMsg struct {
	Chama model.Chama
}

// chamasLoadedMsg is sent when the chama list has been fetched.
type chamasLoadedMsg struct {
	chamas []model.Chama
	err    error
}

// chamaCreatedMsg is sent after a create request completes.
type chamaCreatedMsg struct {
	chama *model.Chama
	err   error
}

type mode int

const (
	modeList mode = iota
	modeCreate
)

const requestTimeout = 30 * time.Second

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	monthly     string
}

// Model is the chama selector: pick the active group or create one.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	mode        mode
	chamas      []model.Chama
	selectedIdx int
	loading     bool
	statusMsg   string

	// preferredID is the chama restored from config; the first load
	// auto-selects it so the app reopens where it was left.
	preferredID string

	createForm *huh.Form
	fb         *formBindings

	width, height int
}

// New creates a chama selector view. preferredID, when non-empty, is
// auto-selected after the first successful load.
func New(client *api.Client, k *keys.KeyMap, preferredID string, width, height int) Model {
	return Model{
		client:      client,
		keys:        k,
		fb:          &formBindings{},
		loading:     true,
		preferredID: preferredID,
		width:       width,
		height:      height,
	}
}

// Init loads the chama list.
func (m Model) Init() tea.Cmd {
	return m.loadChamas()
}

// Chamas returns the currently loaded list.
func (m Model) Chamas() []model.Chama {
	return m.chamas
}

// Update handles messages for the selector.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case chamasLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading chamas: %v", msg.err)
			return m, nil
		}
		m.chamas = msg.chamas
		if m.selectedIdx >= len(m.chamas) {
			m.selectedIdx = 0
		}
		if m.preferredID != "" {
			preferred := m.preferredID
			m.preferredID = ""
			for i, c := range m.chamas {
				if c.ID == preferred {
					m.selectedIdx = i
					chama := c
					return m, func() tea.Msg {
						return ChamaSelectedMsg{Chama: chama}
					}
				}
			}
		}
		return m, nil

	case chamaCreatedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error creating chama: %v", msg.err)
			m.mode = modeList
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Chama %q created", msg.chama.Name)
		m.mode = modeList
		m.loading = true
		return m, m.loadChamas()

	case tea.KeyMsg:
		if m.mode == modeCreate {
			return m.updateCreateForm(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.mode == modeCreate {
		return m.updateCreateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if len(m.chamas) == 0 {
			return m, nil
		}
		chama := m.chamas[m.selectedIdx]
		return m, func() tea.Msg {
			return ChamaSelectedMsg{Chama: chama}
		}

	case msg.String() == "a":
		m.fb.name = ""
		m.fb.description = ""
		m.fb.monthly = ""
		m.createForm = m.buildCreateForm()
		m.mode = modeCreate
		return m, m.createForm.Init()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadChamas()

	case key.Matches(msg, m.keys.Down):
		if len(m.chamas) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.chamas)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.chamas) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.chamas) - 1
			}
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Umoja Savings Group").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Description").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Monthly Contribution (KES)").
				Placeholder("1000").
				Value(&m.fb.monthly).
				Validate(validateAmount),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateCreateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.createForm == nil {
		return m, nil
	}

	mdl, cmd := m.createForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.createForm = f
	}

	if m.createForm.State == huh.StateCompleted {
		amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.monthly), 64)
		return m, m.createChama(api.CreateChamaRequest{
			Name:                strings.TrimSpace(m.fb.name),
			Description:         strings.TrimSpace(m.fb.description),
			MonthlyContribution: amount,
		})
	}
	if m.createForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

// View renders the selector.
func (m Model) View() string {
	if m.mode == modeCreate {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(m.createForm.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Your Chamas"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.chamas) == 0:
		b.WriteString(theme.HelpStyle.Render(
			"You are not a member of any chama yet.\nPress 'a' to create one.",
		))
	default:
		for i, c := range m.chamas {
			b.WriteString(m.renderChamaItem(i, c))
			b.WriteString("\n")
		}
		b.WriteString(m.renderMembers())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"enter select | a create | r refresh",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderChamaItem(idx int, c model.Chama) string {
	line := fmt.Sprintf("%s  %d members  %s/mo",
		c.Name, c.TotalMembers, ui.Money(c.MonthlyContribution),
	)

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// renderMembers shows the highlighted chama's member roster with roles.
func (m Model) renderMembers() string {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.chamas) {
		return ""
	}
	c := m.chamas[m.selectedIdx]
	if len(c.Members) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("Members"))
	b.WriteString("\n")
	for _, mb := range c.Members {
		if !mb.IsActive {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s\n",
			theme.RoleStyle(mb.Role).Render(string(mb.Role)),
			mb.User.FullName(),
		))
	}
	return b.String()
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

// loadChamas returns a command that fetches the user's chamas.
func (m Model) loadChamas() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chamas, err := client.ListChamas(ctx)
		return chamasLoadedMsg{chamas: chamas, err: err}
	}
}

// createChama returns a command that creates a new chama.
func (m Model) createChama(req api.CreateChamaRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chama, err := client.CreateChama(ctx, req)
		return chamaCreatedMsg{chama: chama, err: err}
	}
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("amount is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}
	return nil
}
