package meetings

import (
	"context"
	"fmt"
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
)

// meetingsLoadedMsg is sent when the meeting list has been fetched.
type meetingsLoadedMsg struct {
	meetings []model.Meeting
	err      error
}

// attendanceLoadedMsg is sent when a meeting's attendance arrives.
type attendanceLoadedMsg struct {
	attendance []model.MeetingAttendance
	err        error
}

// actionDoneMsg carries the outcome of a schedule/cancel/check-in request.
type actionDoneMsg struct {
	status string
	err    error
}

type mode int

const (
	modeList mode = iota
	modeScheduleForm
	modeMinutesForm
	modeAttendance
)

const (
	requestTimeout = 30 * time.Second
	scheduleLayout = "2006-01-02 15:04"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title    string
	agenda   string
	location string
	when     string
	minutes  string
}

// Model is the meetings view: upcoming and past meetings, attendance
// check-in, and secretary actions (schedule, cancel, minutes).
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	mode        mode
	chamaID     string
	membership  model.Membership
	meetings    []model.Meeting
	attendance  []model.MeetingAttendance
	selectedIdx int
	loading     bool
	statusMsg   string

	form *huh.Form
	fb   *formBindings

	width, height int
}

// New creates a meetings view.
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
	return m.loadMeetings()
}

// Update handles messages for the meetings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case meetingsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading meetings: %v", msg.err)
			return m, nil
		}
		m.meetings = msg.meetings
		if m.selectedIdx >= len(m.meetings) {
			m.selectedIdx = 0
		}
		return m, nil

	case attendanceLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading attendance: %v", msg.err)
			m.mode = modeList
			return m, nil
		}
		m.attendance = msg.attendance
		m.mode = modeAttendance
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Request failed: %v", msg.err)
		} else {
			m.statusMsg = msg.status
		}
		m.mode = modeList
		m.loading = true
		return m, m.loadMeetings()

	case tea.KeyMsg:
		switch m.mode {
		case modeScheduleForm, modeMinutesForm:
			return m.updateForm(msg)
		case modeAttendance:
			if key.Matches(msg, m.keys.Back) {
				m.mode = modeList
			}
			return m, nil
		default:
			return m.handleListKeys(msg)
		}
	}

	if m.mode == modeScheduleForm || m.mode == modeMinutesForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadMeetings()

	case msg.String() == "a" && m.membership.CanManage():
		m.fb.title = ""
		m.fb.agenda = ""
		m.fb.location = ""
		m.fb.when = time.Now().Add(7 * 24 * time.Hour).Format(scheduleLayout)
		m.form = m.buildScheduleForm()
		m.mode = modeScheduleForm
		return m, m.form.Init()

	case msg.String() == "c":
		meeting, ok := m.selectedMeeting()
		if !ok || !meeting.IsUpcoming() {
			return m, nil
		}
		return m, m.checkIn(meeting.ID)

	case msg.String() == "v":
		meeting, ok := m.selectedMeeting()
		if !ok {
			return m, nil
		}
		m.loading = true
		return m, m.loadAttendance(meeting.ID)

	case msg.String() == "n" && m.membership.CanManage():
		meeting, ok := m.selectedMeeting()
		if !ok {
			return m, nil
		}
		m.fb.minutes = ""
		if meeting.Minutes != nil {
			m.fb.minutes = *meeting.Minutes
		}
		m.form = m.buildMinutesForm()
		m.mode = modeMinutesForm
		return m, m.form.Init()

	case msg.String() == "x" && m.membership.CanManage():
		meeting, ok := m.selectedMeeting()
		if !ok || meeting.Status != model.MeetingScheduled {
			return m, nil
		}
		return m, m.cancel(meeting.ID)

	case key.Matches(msg, m.keys.Down):
		if len(m.meetings) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.meetings)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.meetings) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.meetings) - 1
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) selectedMeeting() (model.Meeting, bool) {
	if m.selectedIdx >= len(m.meetings) {
		return model.Meeting{}, false
	}
	return m.meetings[m.selectedIdx], true
}

func (m *Model) buildScheduleForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewInput().
				Title("When").
				Description("Format: 2006-01-02 15:04").
				Value(&m.fb.when).
				Validate(validateWhen),
			huh.NewInput().
				Title("Location").
				Value(&m.fb.location),
			huh.NewText().
				Title("Agenda").
				Value(&m.fb.agenda),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildMinutesForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Minutes").
				Value(&m.fb.minutes).
				Validate(validateRequired("Minutes")),
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
		if m.mode == modeMinutesForm {
			return m.submitMinutes()
		}
		return m.submitSchedule()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

func (m Model) submitSchedule() (Model, tea.Cmd) {
	when, err := time.ParseInLocation(scheduleLayout, strings.TrimSpace(m.fb.when), time.Local)
	if err != nil {
		m.statusMsg = "Invalid date."
		m.mode = modeList
		return m, nil
	}

	client := m.client
	req := api.ScheduleMeetingRequest{
		ChamaID:      m.chamaID,
		Title:        strings.TrimSpace(m.fb.title),
		Agenda:       strings.TrimSpace(m.fb.agenda),
		Location:     strings.TrimSpace(m.fb.location),
		ScheduledFor: when,
	}
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := client.ScheduleMeeting(ctx, req)
		return actionDoneMsg{status: "Meeting scheduled.", err: err}
	}
}

func (m Model) submitMinutes() (Model, tea.Cmd) {
	meeting, ok := m.selectedMeeting()
	if !ok {
		m.mode = modeList
		return m, nil
	}

	client := m.client
	minutes := m.fb.minutes
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.SaveMinutes(ctx, meeting.ID, minutes)
		return actionDoneMsg{status: "Minutes saved.", err: err}
	}
}

func (m Model) checkIn(meetingID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.MarkAttendance(ctx, meetingID)
		return actionDoneMsg{status: "Attendance marked.", err: err}
	}
}

func (m Model) cancel(meetingID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.CancelMeeting(ctx, meetingID)
		return actionDoneMsg{status: "Meeting cancelled.", err: err}
	}
}

// View renders the meetings view.
func (m Model) View() string {
	switch m.mode {
	case modeScheduleForm, modeMinutesForm:
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(m.form.View())
	case modeAttendance:
		return m.viewAttendance()
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
	b.WriteString(titleStyle.Render("Meetings"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.meetings) == 0:
		b.WriteString(theme.HelpStyle.Render("No meetings scheduled."))
	default:
		for i, meeting := range m.meetings {
			b.WriteString(m.renderMeeting(i, meeting))
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
	hints := "c check in | v attendance | r refresh"
	if m.membership.CanManage() {
		hints = "a schedule | c check in | v attendance | n minutes | x cancel | r refresh"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(hints))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderMeeting(idx int, meeting model.Meeting) string {
	var statusStyle lipgloss.Style
	switch meeting.Status {
	case model.MeetingScheduled:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	case model.MeetingCompleted:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorGreen)
	default:
		statusStyle = lipgloss.NewStyle().Foreground(theme.ColorGray)
	}

	location := meeting.Location
	if location == "" {
		location = "TBD"
	}

	line := fmt.Sprintf("%s  %s  %s  %s",
		meeting.ScheduledFor.Format("Mon 2 Jan 15:04"),
		meeting.Title, location,
		statusStyle.Bold(true).Render(string(meeting.Status)),
	)

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewAttendance() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Attendance"))
	b.WriteString("\n\n")

	if len(m.attendance) == 0 {
		b.WriteString(theme.HelpStyle.Render("No check-ins recorded."))
	} else {
		for _, a := range m.attendance {
			b.WriteString(fmt.Sprintf("%s  %s\n",
				a.MemberName(), a.AttendedAt.Format("15:04")))
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

// loadMeetings fetches the chama's meetings.
func (m Model) loadMeetings() tea.Cmd {
	client := m.client
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		meetings, err := client.ListMeetings(ctx, chamaID)
		return meetingsLoadedMsg{meetings: meetings, err: err}
	}
}

// loadAttendance fetches a meeting's check-in list.
func (m Model) loadAttendance(meetingID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		attendance, err := client.ListAttendance(ctx, meetingID)
		return attendanceLoadedMsg{attendance: attendance, err: err}
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

func validateWhen(s string) error {
	_, err := time.ParseInLocation(scheduleLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return fmt.Errorf("use the format 2006-01-02 15:04")
	}
	return nil
}
