package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/theme"
	"github.com/0097eo/chama-web/internal/ui"
)

// statsLoadedMsg is sent when the dashboard block has been fetched.
type statsLoadedMsg struct {
	stats     *model.DashboardStats
	summary   *model.FinancialSummary
	portfolio *model.LoanPortfolioReport
	audit     []model.AuditLog
	err       error
}

// auditPageSize bounds the recent-activity panel.
const auditPageSize = 5

const requestTimeout = 30 * time.Second

// Model is the per-chama dashboard: headline stats plus the financial
// summary, fetched together.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	chamaID   string
	stats     *model.DashboardStats
	summary   *model.FinancialSummary
	portfolio *model.LoanPortfolioReport
	audit     []model.AuditLog
	loading   bool
	errMsg    string

	width, height int
}

// New creates a dashboard view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetChama points the dashboard at a chama and reloads it.
func (m *Model) SetChama(chamaID string) tea.Cmd {
	m.chamaID = chamaID
	m.stats = nil
	m.summary = nil
	m.portfolio = nil
	m.audit = nil
	m.errMsg = ""
	m.loading = true
	return m.load()
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.stats = msg.stats
		m.summary = msg.summary
		m.portfolio = msg.portfolio
		m.audit = msg.audit
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

// load fetches the stats block and financial summary together.
func (m Model) load() tea.Cmd {
	client := m.client
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := client.GetDashboard(ctx, chamaID)
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		summary, err := client.GetFinancialSummary(ctx, chamaID)
		if err != nil {
			return statsLoadedMsg{err: err}
		}

		// The portfolio and audit panels are best-effort: the report
		// endpoints are role-gated server-side and a rejection should
		// not blank the rest of the dashboard.
		portfolio, err := client.GetLoanPortfolio(ctx, chamaID)
		if err != nil {
			portfolio = nil
		}
		audit, err := client.ListAuditTrail(ctx, chamaID, 1, auditPageSize)
		if err != nil {
			audit = nil
		}

		return statsLoadedMsg{stats: stats, summary: summary, portfolio: portfolio, audit: audit}
	}
}

// View renders the dashboard panels.
func (m Model) View() string {
	if m.loading {
		return m.centered("Loading dashboard...")
	}
	if m.errMsg != "" {
		return m.centered(
			theme.ErrorStyle.Render("Could not load dashboard.") +
				"\n" + m.errMsg +
				"\n\n" + theme.HelpStyle.Render("Press r to retry."),
		)
	}
	if m.stats == nil || m.summary == nil {
		return m.centered("No data.")
	}

	panelWidth := m.width/2 - 4
	if panelWidth < 30 {
		panelWidth = 30
	}

	statsPanel := theme.BorderStyle.Width(panelWidth).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("This Year"),
			statLine("Contributions", ui.Money(m.stats.TotalContributionsThisYear)),
			statLine("Active loans", fmt.Sprintf("%d (%s)",
				m.stats.ActiveLoansCount, ui.Money(m.stats.TotalLoanAmountActive))),
			statLine("Members", fmt.Sprintf("%d", m.stats.TotalMembers)),
		),
	)

	summaryPanel := theme.BorderStyle.Width(panelWidth).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Financial Position"),
			statLine("Total contributions", ui.Money(m.summary.TotalContributions)),
			statLine("Penalties collected", ui.Money(m.summary.TotalPenalties)),
			statLine("Loans disbursed", ui.Money(m.summary.TotalLoansDisbursed)),
			statLine("Loan repayments", ui.Money(m.summary.TotalLoanRepayments)),
			statLine("Outstanding principal", ui.Money(m.summary.OutstandingLoanPrincipal)),
			statLine("Net position", ui.Money(m.summary.NetPosition)),
		),
	)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, statsPanel, " ", summaryPanel)

	sections := []string{panels}
	if m.portfolio != nil {
		sections = append(sections, m.renderPortfolio(panelWidth*2+1))
	}
	if len(m.audit) > 0 {
		sections = append(sections, m.renderAudit(panelWidth*2+1))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderPortfolio(width int) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Loan Portfolio"),
		statLine("Principal disbursed", ui.Money(m.portfolio.TotalPrincipalDisbursed)),
		statLine("Repayments", ui.Money(m.portfolio.TotalRepayments)),
	}
	for _, s := range m.portfolio.StatusBreakdown {
		lines = append(lines, fmt.Sprintf("  %s %d · %s",
			theme.LoanStatusStyle(s.Status).Render(string(s.Status)),
			s.Count, ui.Money(s.TotalAmount)))
	}
	return theme.BorderStyle.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderAudit(width int) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Recent Activity"),
	}
	for _, a := range m.audit {
		lines = append(lines, fmt.Sprintf("%s  %s %s",
			theme.HelpStyle.Render(ui.RelativeTime(a.CreatedAt, time.Now())),
			a.ActorName(), a.Action))
	}
	return theme.BorderStyle.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func statLine(label, value string) string {
	return fmt.Sprintf("%s %s",
		theme.HelpStyle.Render(label+":"),
		value,
	)
}

func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
