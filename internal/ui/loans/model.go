package loans

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

// loansLoadedMsg is sent when the loan book has been fetched.
type loansLoadedMsg struct {
	loans []model.Loan
	err   error
}

// scheduleLoadedMsg is sent when a repayment schedule arrives.
type scheduleLoadedMsg struct {
	loanID  string
	entries []model.ScheduleEntry
	err     error
}

// actionDoneMsg carries the outcome of an apply/approve/payment request.
type actionDoneMsg struct {
	status string
	err    error
}

type mode int

const (
	modeList mode = iota
	modeApplyForm
	modePaymentForm
	modeSchedule
)

const requestTimeout = 30 * time.Second

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	amount   string
	duration string
	purpose  string
	method   string
}

// Model is the loans view: the chama's loan book with per-role
// actions. Members apply and repay; officials approve, reject, and
// disburse.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	mode        mode
	chamaID     string
	membership  model.Membership
	loans       []model.Loan
	schedule    []model.ScheduleEntry
	selectedIdx int
	loading     bool
	statusMsg   string

	form *huh.Form
	fb   *formBindings

	width, height int
}

// New creates a loans view.
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
	return m.loadLoans()
}

// Update handles messages for the loans view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loansLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading loans: %v", msg.err)
			return m, nil
		}
		m.loans = msg.loans
		if m.selectedIdx >= len(m.loans) {
			m.selectedIdx = 0
		}
		return m, nil

	case scheduleLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading schedule: %v", msg.err)
			m.mode = modeList
			return m, nil
		}
		m.schedule = msg.entries
		m.mode = modeSchedule
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Request failed: %v", msg.err)
		} else {
			m.statusMsg = msg.status
		}
		m.mode = modeList
		m.loading = true
		return m, m.loadLoans()

	case tea.KeyMsg:
		switch m.mode {
		case modeApplyForm, modePaymentForm:
			return m.updateForm(msg)
		case modeSchedule:
			if key.Matches(msg, m.keys.Back) {
				m.mode = modeList
			}
			return m, nil
		default:
			return m.handleListKeys(msg)
		}
	}

	if m.mode == modeApplyForm || m.mode == modePaymentForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadLoans()

	case msg.String() == "a":
		m.fb.amount = ""
		m.fb.duration = ""
		m.fb.purpose = ""
		m.form = m.buildApplyForm()
		m.mode = modeApplyForm
		return m, m.form.Init()

	case msg.String() == "p":
		loan, ok := m.selectedLoan()
		if !ok || loan.Status != model.LoanActive {
			return m, nil
		}
		m.fb.amount = ""
		m.fb.method = "MPESA"
		m.form = m.buildPaymentForm()
		m.mode = modePaymentForm
		return m, m.form.Init()

	case msg.String() == "s":
		loan, ok := m.selectedLoan()
		if !ok {
			return m, nil
		}
		m.loading = true
		return m, m.loadSchedule(loan.ID)

	case msg.String() == "y" && m.membership.CanManage():
		loan, ok := m.selectedLoan()
		if !ok || loan.Status != model.LoanPending {
			return m, nil
		}
		return m, m.decide(loan.ID, model.LoanApproved)

	case msg.String() == "n" && m.membership.CanManage():
		loan, ok := m.selectedLoan()
		if !ok || loan.Status != model.LoanPending {
			return m, nil
		}
		return m, m.decide(loan.ID, model.LoanRejected)

	case msg.String() == "x" && m.membership.Role == model.MembershipRoleTreasurer:
		loan, ok := m.selectedLoan()
		if !ok || loan.Status != model.LoanApproved {
			return m, nil
		}
		return m, m.disburse(loan.ID)

	case key.Matches(msg, m.keys.Down):
		if len(m.loans) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.loans)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.loans) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.loans) - 1
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) selectedLoan() (model.Loan, bool) {
	if m.selectedIdx >= len(m.loans) {
		return model.Loan{}, false
	}
	return m.loans[m.selectedIdx], true
}

func (m *Model) buildApplyForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (KES)").
				Value(&m.fb.amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Duration (months)").
				Value(&m.fb.duration).
				Validate(validateDuration),
			huh.NewInput().
				Title("Purpose").
				Value(&m.fb.purpose).
				Validate(validateRequired("Purpose")),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildPaymentForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Payment Amount (KES)").
				Value(&m.fb.amount).
				Validate(validateAmount),
			huh.NewSelect[string]().
				Title("Payment Method").
				Options(
					huh.NewOption("M-Pesa", "MPESA"),
					huh.NewOption("Cash", "CASH"),
					huh.NewOption("Bank transfer", "BANK"),
				).
				Value(&m.fb.method),
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
		if m.mode == modePaymentForm {
			return m.submitPayment()
		}
		return m.submitApplication()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

// submitApplication checks eligibility first, then applies. The server
// owns the eligibility math; a refusal never reaches the apply endpoint.
func (m Model) submitApplication() (Model, tea.Cmd) {
	amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)
	duration, _ := strconv.Atoi(strings.TrimSpace(m.fb.duration))

	client := m.client
	membershipID := m.membership.ID
	purpose := strings.TrimSpace(m.fb.purpose)
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		eligibility, err := client.CheckEligibility(ctx, membershipID, amount)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if !eligibility.Eligible {
			return actionDoneMsg{
				err: fmt.Errorf("not eligible: %s (max %s)",
					eligibility.Reason, ui.Money(eligibility.MaxAmount)),
			}
		}

		_, err = client.ApplyLoan(ctx, api.ApplyLoanRequest{
			MembershipID: membershipID,
			Amount:       amount,
			Duration:     duration,
			Purpose:      purpose,
		})
		return actionDoneMsg{status: "Loan application submitted.", err: err}
	}
}

func (m Model) submitPayment() (Model, tea.Cmd) {
	loan, ok := m.selectedLoan()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)

	client := m.client
	method := m.fb.method
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.RecordLoanPayment(ctx, loan.ID, api.RecordLoanPaymentRequest{
			Amount:        amount,
			PaymentMethod: method,
		})
		return actionDoneMsg{status: "Payment recorded.", err: err}
	}
}

func (m Model) decide(loanID string, status model.LoanStatus) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.ApproveLoan(ctx, loanID, status)
		verb := "approved"
		if status == model.LoanRejected {
			verb = "rejected"
		}
		return actionDoneMsg{status: "Loan " + verb + ".", err: err}
	}
}

func (m Model) disburse(loanID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.DisburseLoan(ctx, loanID)
		return actionDoneMsg{status: "Loan disbursed via M-Pesa.", err: err}
	}
}

// View renders the loans view.
func (m Model) View() string {
	switch m.mode {
	case modeApplyForm, modePaymentForm:
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(m.form.View())
	case modeSchedule:
		return m.viewSchedule()
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
	b.WriteString(titleStyle.Render("Loans"))
	if m.membership.Role != "" {
		b.WriteString("  ")
		b.WriteString(theme.RoleStyle(m.membership.Role).Render(string(m.membership.Role)))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.loans) == 0:
		b.WriteString(theme.HelpStyle.Render("No loans yet.\nPress 'a' to apply."))
	default:
		for i, l := range m.loans {
			b.WriteString(m.renderLoan(i, l))
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
	hints := "a apply | p repay | s schedule | r refresh"
	if m.membership.CanManage() {
		hints = "a apply | y approve | n reject | x disburse | p repay | s schedule | r refresh"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(hints))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderLoan(idx int, l model.Loan) string {
	statusBadge := theme.LoanStatusStyle(l.Status).Render(string(l.Status))

	repaid := ""
	if l.Status == model.LoanActive {
		repaid = fmt.Sprintf("  repaid %s", ui.Money(l.TotalRepaid()))
	}

	line := fmt.Sprintf("%s  %s  %dmo  %s%s",
		l.Membership.User.FullName(), ui.Money(l.Amount),
		l.Duration, statusBadge, repaid,
	)

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewSchedule() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Repayment Schedule"))
	b.WriteString("\n\n")

	if len(m.schedule) == 0 {
		b.WriteString(theme.HelpStyle.Render("No schedule available."))
	} else {
		header := fmt.Sprintf("%-4s %-12s %12s %12s %12s %12s",
			"#", "Due", "Principal", "Interest", "Total", "Balance")
		b.WriteString(theme.HelpStyle.Render(header))
		b.WriteString("\n")
		for _, e := range m.schedule {
			b.WriteString(fmt.Sprintf("%-4d %-12s %12s %12s %12s %12s\n",
				e.Installment, e.DueDate.Format("2 Jan 2006"),
				ui.Money(e.Principal), ui.Money(e.Interest),
				ui.Money(e.Total), ui.Money(e.Balance),
			))
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("esc back"))

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

// loadLoans fetches the chama's loan book.
func (m Model) loadLoans() tea.Cmd {
	client := m.client
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		loans, err := client.ListLoans(ctx, chamaID)
		return loansLoadedMsg{loans: loans, err: err}
	}
}

// loadSchedule fetches a loan's amortization schedule.
func (m Model) loadSchedule(loanID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		entries, err := client.GetLoanSchedule(ctx, loanID)
		return scheduleLoadedMsg{loanID: loanID, entries: entries, err: err}
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

func validateDuration(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > 36 {
		return fmt.Errorf("duration must be between 1 and 36 months")
	}
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
