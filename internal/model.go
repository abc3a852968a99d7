package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tidclock/internal/consent"
	"tidclock/internal/geofence"
	"tidclock/internal/project"
	"tidclock/internal/timelog"
	"tidclock/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

type Tab int

const (
	TabClock Tab = iota
	TabOverview
	TabLogs
)

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Today"
	case TabLogs:
		return "Logs"
	}
	return "Clock"
}

const (
	fieldHours = iota
	fieldNotes
	fieldDeviations
	fieldCount
)

// MsgLocationChecked carries the outcome of an asynchronous geofence check.
type MsgLocationChecked struct {
	ProjectID int64
	Gen       int
	Result    geofence.Result
	Err       error
}

// Deps are the services the application state works against.
type Deps struct {
	Projects *project.Repository
	Logs     *timelog.Repository
	Consent  *consent.Manager
	Checker  *geofence.Checker
	Tick     time.Duration
	Now      func() time.Time
}

// Model is the whole application state. It is owned by the bubbletea
// program and only mutated from Update.
type Model struct {
	Tab          Tab
	Projects     []project.Project
	Cursor       int
	Selected     *project.Project
	Verification geofence.Verification
	Session      *timer.Session
	WorkTime     string
	RecentLogs   []timelog.TimeLog

	Status    string
	StatusErr bool

	// Notes prompt shown after clocking out
	ShowNotes  bool
	NotesInput string
	PendingLog *timelog.TimeLog

	// Manual time entry form
	ShowEntryForm   bool
	EntryHours      string
	EntryNotes      string
	EntryDeviations string
	InputFocus      int

	Today         timelog.DailySummary
	AllLogs       []timelog.Entry
	LogViewScroll int

	ShowConsent bool
	Consent     consent.Preferences

	deps     Deps
	ticker   *timer.Ticker
	checkGen int
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewModel(deps Deps) (*Model, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	projects, err := deps.Projects.GetAll(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	prefs, decided, err := deps.Consent.Load(ctx)
	if err != nil {
		slog.Warn("consent: could not read preferences", "error", err)
	}

	m := &Model{
		Tab:         TabClock,
		Projects:    projects,
		Session:     timer.NewWithClock(deps.Now),
		WorkTime:    timer.FormatHHMM(0),
		ShowConsent: !decided,
		Consent:     prefs,
		deps:        deps,
		ticker:      timer.NewTicker(deps.Tick),
		ctx:         ctx,
		cancel:      cancel,
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timer.TickMsg:
		if !m.ticker.Accept(msg) {
			return m, nil
		}
		m.WorkTime = m.Session.Display(m.deps.Now())
		return m, m.ticker.Next(msg)
	case MsgLocationChecked:
		m.handleLocationChecked(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowConsent {
		return m.consentView()
	}
	if m.ShowNotes {
		return m.notesInputView()
	}
	if m.ShowEntryForm {
		return m.entryFormView()
	}

	switch m.Tab {
	case TabOverview:
		return m.overviewView()
	case TabLogs:
		return m.allLogsView()
	}
	if len(m.Projects) == 0 {
		return m.emptyStateView()
	}
	return m.mainView()
}

func (m *Model) CursorProject() *project.Project {
	if m.Cursor >= 0 && m.Cursor < len(m.Projects) {
		return &m.Projects[m.Cursor]
	}
	return nil
}

// SelectProject makes the project with id the one to clock in to and starts
// location verification when the project requires it.
func (m *Model) SelectProject(id int64) tea.Cmd {
	if m.Session.Running() && m.Session.ProjectID() != id {
		m.setError("Clock out before switching project.")
		return nil
	}

	var p *project.Project
	for i := range m.Projects {
		if m.Projects[i].ID == id {
			p = &m.Projects[i]
			break
		}
	}
	if p == nil {
		m.setError("Project not found.")
		return nil
	}

	m.Selected = p
	m.loadRecentLogs()
	m.setStatus(fmt.Sprintf("Selected %s.", p.Name))

	if !p.NeedsLocationCheck() {
		m.Verification = geofence.NotRequired(p.ID)
		return nil
	}
	m.Verification = geofence.Pending(p.ID)
	return m.CheckLocation()
}

// CheckLocation starts a single verification of the selected project's site.
func (m *Model) CheckLocation() tea.Cmd {
	p := m.Selected
	if p == nil || !p.NeedsLocationCheck() {
		return nil
	}
	if m.Verification.Status == geofence.StatusChecking {
		return nil
	}
	target, _ := p.Location()
	m.Verification = geofence.Pending(p.ID).Checking()
	m.checkGen++

	ctx, checker, gen := m.ctx, m.deps.Checker, m.checkGen
	return func() tea.Msg {
		res, err := checker.Check(ctx, target)
		return MsgLocationChecked{ProjectID: target.ProjectID, Gen: gen, Result: res, Err: err}
	}
}

// handleLocationChecked only applies the result of the latest check.
func (m *Model) handleLocationChecked(msg MsgLocationChecked) {
	if msg.Gen != m.checkGen {
		return
	}
	if m.Selected == nil || m.Selected.ID != msg.ProjectID || m.Verification.Status != geofence.StatusChecking {
		return
	}
	if errors.Is(msg.Err, context.Canceled) {
		m.Verification = geofence.Pending(msg.ProjectID)
		return
	}
	m.Verification = m.Verification.Resolve(msg.Result, msg.Err)
	switch m.Verification.Status {
	case geofence.StatusVerified:
		m.setStatus(m.Verification.Message())
	default:
		m.setError(m.Verification.Message())
	}
}

// ClockIn starts a work session on the selected project.
func (m *Model) ClockIn() tea.Cmd {
	if m.Session.Running() {
		return nil
	}

	req := timer.ClockInRequest{}
	if p := m.Selected; p != nil {
		if err := p.CanClockIn(); err != nil {
			m.setError(fmt.Sprintf("%s is %s and cannot be clocked in to.", p.Name, strings.ToLower(p.Status.Label())))
			return nil
		}
		req.ProjectID = p.ID
		req.LocationRequired = p.NeedsLocationCheck()
		req.LocationVerified = m.Verification.ProjectID == p.ID && m.Verification.Satisfied()
	}

	if err := m.Session.ClockIn(req); err != nil {
		slog.Info("clock in rejected", "project_id", req.ProjectID, "reason", err)
		m.setError(timer.Message(err))
		return nil
	}

	slog.Info("clocked in", "project_id", req.ProjectID, "at", m.Session.StartedAt())
	m.WorkTime = m.Session.Display(m.deps.Now())
	m.setStatus("Clocked in.")
	return m.ticker.Start()
}

// ClockOut ends the running session and prompts for notes before the
// session is logged.
func (m *Model) ClockOut() {
	iv, err := m.Session.ClockOut()
	m.ticker.Stop()
	m.WorkTime = timer.FormatHHMM(0)
	if err != nil {
		m.setError(timer.Message(err))
		return
	}

	slog.Info("clocked out", "project_id", iv.ProjectID, "duration", iv.Duration)
	l := timelog.FromInterval(iv)
	m.PendingLog = &l
	m.NotesInput = ""
	m.ShowNotes = true
	m.setStatus("Clocked out.")
}

func (m *Model) savePendingLog() {
	if m.PendingLog == nil {
		return
	}
	m.PendingLog.Notes = strings.TrimSpace(m.NotesInput)
	if err := m.deps.Logs.Create(m.ctx, m.PendingLog); err != nil {
		slog.Error("failed to save time log", "project_id", m.PendingLog.ProjectID, "error", err)
		m.setError("Could not save the time log.")
	} else {
		m.setStatus(fmt.Sprintf("Saved %s.", timelog.FormatHours(m.PendingLog.Duration)))
	}
	m.PendingLog = nil
	m.ShowNotes = false
	m.NotesInput = ""
	m.loadRecentLogs()
}

// SubmitEntry saves the manual time entry form.
func (m *Model) SubmitEntry() {
	entry := timelog.ManualEntry{
		Notes:      strings.TrimSpace(m.EntryNotes),
		Deviations: strings.TrimSpace(m.EntryDeviations),
	}
	if m.Selected != nil {
		entry.ProjectID = m.Selected.ID
	}
	if m.EntryHours != "" {
		h, err := strconv.ParseFloat(m.EntryHours, 64)
		if err != nil {
			m.setError(timelog.ErrInvalidHours.Error())
			return
		}
		entry.Hours = h
	}

	l, err := entry.ToLog(m.deps.Now())
	if err != nil {
		m.setError(err.Error())
		return
	}
	if err := m.deps.Logs.Create(m.ctx, &l); err != nil {
		slog.Error("failed to save manual entry", "project_id", l.ProjectID, "error", err)
		m.setError("Could not save the time entry.")
		return
	}

	slog.Info("manual entry saved", "project_id", l.ProjectID, "hours", entry.Hours)
	m.setStatus(fmt.Sprintf("%sh registered for %s.", m.EntryHours, m.Selected.Name))
	m.ShowEntryForm = false
	m.loadRecentLogs()
}

func (m *Model) SwitchTab(t Tab) {
	m.Tab = t
	switch t {
	case TabOverview:
		m.loadToday()
	case TabLogs:
		m.loadAllLogs()
	}
}

func (m *Model) loadRecentLogs() {
	m.RecentLogs = nil
	if m.Selected == nil {
		return
	}
	logs, err := m.deps.Logs.ListByProject(m.ctx, m.Selected.ID)
	if err != nil {
		slog.Error("failed to load time logs", "project_id", m.Selected.ID, "error", err)
		return
	}
	m.RecentLogs = logs
}

func (m *Model) loadToday() {
	now := m.deps.Now()
	from := timelog.StartOfDay(now)
	entries, err := m.deps.Logs.ListBetween(m.ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		slog.Error("failed to load today's logs", "error", err)
	}
	m.Today = timelog.Summarize(entries, now)
}

func (m *Model) loadAllLogs() {
	logs, err := m.deps.Logs.ListAll(m.ctx)
	if err != nil {
		slog.Error("failed to load time logs", "error", err)
	}
	m.AllLogs = logs
	m.LogViewScroll = 0
}

func (m *Model) setStatus(s string) {
	m.Status = s
	m.StatusErr = false
}

func (m *Model) setError(s string) {
	m.Status = s
	m.StatusErr = true
}

// Close stops the running session, logging it without notes, and cancels
// any location request still in flight.
func (m *Model) Close() error {
	m.ticker.Stop()
	defer m.cancel()

	if m.PendingLog != nil {
		m.savePendingLog()
	}
	if !m.Session.Running() {
		return nil
	}
	iv, err := m.Session.ClockOut()
	if err != nil {
		return err
	}
	l := timelog.FromInterval(iv)
	return m.deps.Logs.Create(m.ctx, &l)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowConsent {
		return m.handleConsentInput(msg)
	}
	if m.ShowNotes {
		return m.handleNotesInput(msg)
	}
	if m.ShowEntryForm {
		return m.handleEntryInput(msg)
	}
	if m.Tab == TabLogs {
		return m.handleLogViewInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.SwitchTab((m.Tab + 1) % 3)
	case "1":
		m.SwitchTab(TabClock)
	case "2":
		m.SwitchTab(TabOverview)
	case "3":
		m.SwitchTab(TabLogs)
	case "esc":
		m.SwitchTab(TabClock)
	}
	if m.Tab != TabClock {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Projects)-1 {
			m.Cursor++
		}
	case "enter":
		if p := m.CursorProject(); p != nil {
			return m, m.SelectProject(p.ID)
		}
	case "v":
		if m.Selected == nil {
			m.setError(timer.Message(timer.ErrNoProjectSelected))
			return m, nil
		}
		return m, m.CheckLocation()
	case "c":
		if m.Session.Running() {
			m.ClockOut()
			return m, nil
		}
		return m, m.ClockIn()
	case "m":
		m.ShowEntryForm = true
		m.EntryHours = ""
		m.EntryNotes = ""
		m.EntryDeviations = ""
		m.InputFocus = fieldHours
	}
	return m, nil
}

func (m *Model) handleConsentInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		prefs consent.Preferences
		err   error
	)
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a":
		prefs, err = m.deps.Consent.AcceptAll(m.ctx)
	case "r", "esc":
		prefs, err = m.deps.Consent.RejectAll(m.ctx)
	default:
		return m, nil
	}
	if err != nil {
		slog.Error("failed to save consent", "error", err)
		m.setError("Could not save your cookie choice.")
	}
	m.Consent = prefs
	m.ShowConsent = false
	return m, nil
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "1":
		m.SwitchTab(TabClock)
	case "tab":
		m.SwitchTab(TabClock)
	case "2":
		m.SwitchTab(TabOverview)
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := len(m.AllLogs) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

func (m *Model) handleNotesInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		// Save the log without notes
		m.NotesInput = ""
		m.savePendingLog()
	case "enter":
		m.savePendingLog()
	case "backspace":
		m.NotesInput = dropLastRune(m.NotesInput)
	default:
		if r := typedRune(msg); r != 0 {
			m.NotesInput += string(r)
		}
	}
	return m, nil
}

func (m *Model) handleEntryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ShowEntryForm = false
	case "tab", "down":
		m.InputFocus = (m.InputFocus + 1) % fieldCount
	case "shift+tab", "up":
		m.InputFocus = (m.InputFocus + fieldCount - 1) % fieldCount
	case "enter":
		if m.InputFocus < fieldDeviations {
			m.InputFocus++
			return m, nil
		}
		m.SubmitEntry()
	case "backspace":
		field := m.entryField()
		*field = dropLastRune(*field)
	default:
		r := typedRune(msg)
		if r == 0 {
			break
		}
		if m.InputFocus == fieldHours && !(r >= '0' && r <= '9' || r == '.') {
			break
		}
		field := m.entryField()
		*field += string(r)
	}
	return m, nil
}

func (m *Model) entryField() *string {
	switch m.InputFocus {
	case fieldNotes:
		return &m.EntryNotes
	case fieldDeviations:
		return &m.EntryDeviations
	}
	return &m.EntryHours
}

func typedRune(msg tea.KeyMsg) rune {
	if msg.Type == tea.KeySpace {
		return ' '
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0
	}
	return msg.Runes[0]
}

func dropLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}
