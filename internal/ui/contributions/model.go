package contributions

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

// contributionsLoadedMsg is sent when the contribution list is fetched.
type contributionsLoadedMsg struct {
	contributions []model.Contribution
	err           error
}

// defaultersLoadedMsg is sent when the defaulters list is fetched.
type defaultersLoadedMsg struct {
	defaulters []model.Defaulter
	err        error
}

// actionDoneMsg carries the outcome of a record/STK-push/reminder request.
type actionDoneMsg struct {
	status string
	err    error
}

type mode int

const (
	modeList mode = iota
	modeDefaulters
	modeRecordForm
	modePayForm
)

const requestTimeout = 30 * time.Second

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	amount string
	month  string
	year   string
	method string
	phone  string
}

// Model is the contributions view: the chama's contribution ledger,
// the defaulters report, and treasurer actions (record payment, SMS
// reminder). Members can pay their own contribution via M-Pesa.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	mode          mode
	chamaID       string
	membership    model.Membership
	contributions []model.Contribution
	defaulters    []model.Defaulter
	selectedIdx   int
	loading       bool
	statusMsg     string

	form *huh.Form
	fb   *formBindings

	width, height int
}

// New creates a contributions view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetChama points the view at a chama and reloads.
func (m *Model) SetChama(chamaID string, membership model.Membership) tea.Cmd {
	m.chamaID = chamaID
	m.membership = membership
	m.mode = modeList
	m.selectedIdx = 0
	m.statusMsg = ""
	m.loading = true
	return m.loadContributions()
}

// Update handles messages for the contributions view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case contributionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading contributions: %v", msg.err)
			return m, nil
		}
		m.contributions = msg.contributions
		if m.selectedIdx >= len(m.contributions) {
			m.selectedIdx = 0
		}
		return m, nil

	case defaultersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading defaulters: %v", msg.err)
			m.mode = modeList
			return m, nil
		}
		m.defaulters = msg.defaulters
		m.selectedIdx = 0
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Request failed: %v", msg.err)
		} else {
			m.statusMsg = msg.status
		}
		m.mode = modeList
		m.loading = true
		return m, m.loadContributions()

	case tea.KeyMsg:
		switch m.mode {
		case modeRecordForm, modePayForm:
			return m.updateForm(msg)
		case modeDefaulters:
			return m.handleDefaulterKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}

	if m.mode == modeRecordForm || m.mode == modePayForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadContributions()

	case msg.String() == "a" && m.membership.CanManage():
		m.resetForm()
		m.form = m.buildRecordForm()
		m.mode = modeRecordForm
		return m, m.form.Init()

	case msg.String() == "p":
		item, ok := m.selectedContribution()
		if !ok || item.Status == model.ContributionPaid {
			return m, nil
		}
		m.resetForm()
		m.fb.amount = strconv.FormatFloat(item.Amount, 'f', -1, 64)
		m.form = m.buildPayForm()
		m.mode = modePayForm
		return m, m.form.Init()

	case msg.String() == "f" && m.membership.CanManage():
		m.mode = modeDefaulters
		m.loading = true
		return m, m.loadDefaulters()

	case key.Matches(msg, m.keys.Down):
		if len(m.contributions) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.contributions)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.contributions) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.contributions) - 1
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleDefaulterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.selectedIdx = 0
		return m, nil

	case msg.String() == "s":
		if m.selectedIdx >= len(m.defaulters) {
			return m, nil
		}
		d := m.defaulters[m.selectedIdx]
		return m, m.sendReminder(d)

	case key.Matches(msg, m.keys.Down):
		if len(m.defaulters) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.defaulters)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.defaulters) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.defaulters) - 1
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) selectedContribution() (model.Contribution, bool) {
	if m.selectedIdx >= len(m.contributions) {
		return model.Contribution{}, false
	}
	return m.contributions[m.selectedIdx], true
}

func (m *Model) resetForm() {
	now := time.Now()
	m.fb.amount = ""
	m.fb.month = strconv.Itoa(int(now.Month()))
	m.fb.year = strconv.Itoa(now.Year())
	m.fb.method = "CASH"
	m.fb.phone = ""
}

func (m *Model) buildRecordForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (KES)").
				Value(&m.fb.amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Month (1-12)").
				Value(&m.fb.month).
				Validate(validateMonth),
			huh.NewInput().
				Title("Year").
				Value(&m.fb.year).
				Validate(validateYear),
			huh.NewSelect[string]().
				Title("Payment Method").
				Options(
					huh.NewOption("Cash", "CASH"),
					huh.NewOption("M-Pesa", "MPESA"),
					huh.NewOption("Bank transfer", "BANK"),
				).
				Value(&m.fb.method),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildPayForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (KES)").
				Value(&m.fb.amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("M-Pesa Phone").
				Placeholder("254712345678").
				Value(&m.fb.phone).
				Validate(validatePhone),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.mode == modePayForm {
			return m.submitStkPush()
		}
		return m.submitRecord()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

func (m Model) submitRecord() (Model, tea.Cmd) {
	amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)
	month, _ := strconv.Atoi(strings.TrimSpace(m.fb.month))
	year, _ := strconv.Atoi(strings.TrimSpace(m.fb.year))

	req := api.RecordContributionRequest{
		MembershipID:  m.membership.ID,
		Amount:        amount,
		Month:         month,
		Year:          year,
		PaymentMethod: m.fb.method,
	}

	client := m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := client.RecordContribution(ctx, req)
		return actionDoneMsg{status: "Contribution recorded.", err: err}
	}
}

// submitStkPush starts an M-Pesa checkout for the selected contribution.
// The server completes the payment asynchronously via the Daraja
// callback; the list refresh afterwards picks up the new status.
func (m Model) submitStkPush() (Model, tea.Cmd) {
	item, ok := m.selectedContribution()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)

	req := api.StkPushRequest{
		Amount:         amount,
		Phone:          strings.TrimSpace(m.fb.phone),
		ContributionID: item.ID,
	}

	client := m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := client.InitiateStkPush(ctx, req)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{
			status: fmt.Sprintf("STK push sent (%s). Check your phone.", result.CheckoutRequestID),
		}
	}
}

// sendReminder asks the server to SMS a contribution reminder.
func (m Model) sendReminder(d model.Defaulter) tea.Cmd {
	client := m.client
	req := api.ContributionReminderRequest{
		ChamaID:     m.chamaID,
		UserID:      d.MembershipID,
		MemberName:  d.MemberName,
		PhoneNumber: d.PhoneNumber,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.SendContributionReminder(ctx, req)
		return actionDoneMsg{
			status: fmt.Sprintf("Reminder sent to %s.", d.MemberName),
			err:    err,
		}
	}
}

// View renders the contributions view.
func (m Model) View() string {
	switch m.mode {
	case modeRecordForm, modePayForm:
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(m.form.View())
	case modeDefaulters:
		return m.viewDefaulters()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Contributions"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.contributions) == 0:
		b.WriteString(theme.HelpStyle.Render("No contributions recorded yet."))
	default:
		for i, c := range m.contributions {
			b.WriteString(m.renderContribution(i, c))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hints := "p pay via M-Pesa | r refresh"
	if m.membership.CanManage() {
		hints = "a record | p pay via M-Pesa | f defaulters | r refresh"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(hints))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderContribution(idx int, c model.Contribution) string {
	status := string(c.Status)
	var statusStyle lipgloss.Style
	switch c.Status {
	case model.ContributionPaid:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorGreen)
	case model.ContributionOverdue:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorRed)
	default:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorYellow)
	}

	line := fmt.Sprintf("%s  %d/%d  %s  %s",
		c.MemberName(), c.Month, c.Year,
		ui.Money(c.Amount), statusStyle.Bold(true).Render(status),
	)

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewDefaulters() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Contribution Defaulters"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.defaulters) == 0:
		b.WriteString(theme.HelpStyle.Render("No defaulters. Everyone is up to date."))
	default:
		for i, d := range m.defaulters {
			line := fmt.Sprintf("%s  %d months behind  owes %s",
				d.MemberName, d.MonthsBehind, ui.Money(d.AmountOwed),
			)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(line))
			} else {
				b.WriteString(theme.ListItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
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
		"s send SMS reminder | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
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

// loadContributions fetches the chama's contribution ledger.
func (m Model) loadContributions() tea.Cmd {
	client := m.client
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		contributions, err := client.ListContributions(ctx, chamaID)
		return contributionsLoadedMsg{contributions: contributions, err: err}
	}
}

// loadDefaulters fetches the server-computed defaulters report.
func (m Model) loadDefaulters() tea.Cmd {
	client := m.client
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		defaulters, err := client.ListContributionDefaulters(ctx, chamaID)
		return defaultersLoadedMsg{defaulters: defaulters, err: err}
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

func validateMonth(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}
	return nil
}

func validateYear(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 2000 || v > 2100 {
		return fmt.Errorf("invalid year")
	}
	return nil
}

func validatePhone(s string) error {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return fmt.Errorf("enter a valid phone number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("phone must contain digits only")
		}
	}
	return nil
}
