package internal

import (
	"fmt"
	"strings"

	"tidclock/internal/geofence"
	"tidclock/internal/project"
	"tidclock/internal/timelog"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	appTitle    = "Tidclock"
	companyName = "Byggfirma Nord AB"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	projectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	projectItemSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("170")).
					Background(lipgloss.Color("235")).
					Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 2)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Bold(true).
			Padding(0, 2)
)

func (m *Model) header() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render(appTitle + " · " + companyName))
	sb.WriteString("\n")

	var tabs []string
	for _, t := range []Tab{TabClock, TabOverview, TabLogs} {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.Tab {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	sb.WriteString(lipgloss.PlaceHorizontal(80, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Top, tabs...)))
	sb.WriteString("\n\n")
	return sb.String()
}

func (m *Model) statusLine() string {
	if m.Status == "" {
		return ""
	}
	if m.StatusErr {
		return errorStyle.Render(m.Status)
	}
	return runningStyle.Render(m.Status)
}

func (m *Model) emptyStateView() string {
	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		titleStyle.Render(appTitle)+"\n\n"+
			inactiveStyle.Render("No projects yet."),
	)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(m.header())

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.projectListView(),
		"  ",
		m.clockCardView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Navigate: Up/Down | Select: Enter | Clock in/out: c | Check location: v | Manual entry: m | Tabs: Tab | Quit: q"))

	return sb.String()
}

func (m *Model) projectListView() string {
	var sb strings.Builder

	sb.WriteString("Projects\n\n")

	for i, p := range m.Projects {
		marker := "  "
		if m.Selected != nil && m.Selected.ID == p.ID {
			marker = "✓ "
		}
		running := ""
		if m.Session.Running() && m.Session.ProjectID() == p.ID {
			running = " ●"
		}
		site := ""
		if p.NeedsLocationCheck() {
			site = " ⌖"
		}

		line := fmt.Sprintf("%s%s%s%s", marker, p.Name, site, running)
		sub := fmt.Sprintf("  %s · %s", p.City, p.Status.Label())
		if p.Status != project.StatusActive {
			sub = warningStyle.Render(sub)
		} else {
			sub = inactiveStyle.Render(sub)
		}

		if i == m.Cursor {
			sb.WriteString(projectItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(projectItemStyle.Render(line))
		}
		sb.WriteString("\n")
		sb.WriteString(projectItemStyle.Render(sub))
		sb.WriteString("\n")
	}

	return boxStyle.Width(32).Height(18).Render(sb.String())
}

func (m *Model) clockCardView() string {
	var sb strings.Builder

	current := "No project selected"
	if m.Selected != nil {
		current = m.Selected.Name
	}
	sb.WriteString(logHeaderStyle.Render("Time clock"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Project: %s\n\n", current))

	sb.WriteString(timerDisplayStyle.Render(m.deps.Now().Format("15:04")))
	sb.WriteString("\n")
	if m.Session.Running() {
		sb.WriteString(timerRunningStyle.Render("Worked today: " + m.WorkTime))
		sb.WriteString("\n")
		sb.WriteString(runningStyle.Render("● Working now"))
	} else {
		sb.WriteString(inactiveStyle.Render("○ Not started"))
	}
	sb.WriteString("\n")

	if v := m.verificationView(); v != "" {
		sb.WriteString("\n")
		sb.WriteString(v)
	}

	if len(m.RecentLogs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(logHeaderStyle.Render("Recent Logs"))
		sb.WriteString("\n")
		displayCount := min(len(m.RecentLogs), 4)
		for _, l := range m.RecentLogs[:displayCount] {
			sb.WriteString(m.formatLogEntry(l))
			sb.WriteString("\n")
		}
	}

	return boxStyle.Width(46).Height(18).Render(sb.String())
}

func (m *Model) verificationView() string {
	p := m.Selected
	if p == nil || !p.NeedsLocationCheck() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(logHeaderStyle.Render("Location check"))
	sb.WriteString("\n")
	sb.WriteString(inactiveStyle.Render(fmt.Sprintf("Requires %.0fm proximity", p.Site.RadiusMeters)))
	sb.WriteString("\n")

	v := m.Verification
	badge := v.Status.String()
	switch v.Status {
	case geofence.StatusVerified:
		sb.WriteString(runningStyle.Render("✓ " + badge))
	case geofence.StatusOutOfRange, geofence.StatusFailed:
		sb.WriteString(errorStyle.Render("! " + badge))
	default:
		sb.WriteString(warningStyle.Render(badge))
	}
	sb.WriteString("\n")

	if v.Result != nil {
		pos := v.Result.Position
		sb.WriteString(logTimeStyle.Render(fmt.Sprintf("%sm away · ±%.0fm · fix %s",
			humanize.Comma(int64(v.Result.DistanceMeters+0.5)),
			pos.AccuracyMeters,
			humanize.RelTime(pos.Timestamp, m.deps.Now(), "old", "from now"),
		)))
		sb.WriteString("\n")
	}
	if msg := v.Message(); msg != "" && v.Status != geofence.StatusVerified {
		sb.WriteString(errorStyle.Width(42).Render(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) overviewView() string {
	var sb strings.Builder
	sb.WriteString(m.header())

	s := m.Today
	var body strings.Builder
	body.WriteString(logHeaderStyle.Render("Today · " + s.Day.Format("Monday 2 January 2006")))
	body.WriteString("\n\n")

	if len(s.Entries) == 0 {
		body.WriteString(inactiveStyle.Render("No time registered today."))
		body.WriteString("\n")
	}
	for _, e := range s.Entries {
		body.WriteString(fmt.Sprintf("%s  %s-%s  %s",
			logTagStyle.Render(fmt.Sprintf("%-22s", e.ProjectName)),
			e.Log.StartedAt.Local().Format("15:04"),
			e.Log.StoppedAt.Local().Format("15:04"),
			timelog.FormatHours(e.Log.Duration),
		))
		if e.Log.Source == timelog.SourceManual {
			body.WriteString(inactiveStyle.Render("  manual"))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(timerDisplayStyle.Render("Total: " + timelog.FormatHours(s.Total)))
	body.WriteString("\n")

	if len(s.ByProject) > 0 && s.Total > 0 {
		body.WriteString("\n")
		body.WriteString(logHeaderStyle.Render("By project"))
		body.WriteString("\n")
		for _, pt := range s.ByProject {
			share := float64(pt.Total) / float64(s.Total)
			bar := strings.Repeat("█", int(share*30+0.5))
			body.WriteString(fmt.Sprintf("%-22s %6s (%2.0f%%)\n", pt.ProjectName, timelog.FormatHours(pt.Total), share*100))
			body.WriteString(runningStyle.Render(bar))
			body.WriteString("\n")
		}
	}

	sb.WriteString(boxStyle.Width(80).Render(body.String()))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Tabs: Tab/1/2/3 | Back: Esc | Quit: q"))
	return sb.String()
}

func (m *Model) allLogsView() string {
	var sb strings.Builder
	sb.WriteString(m.header())

	if len(m.AllLogs) == 0 {
		sb.WriteString(inactiveStyle.Render("No time logs yet."))
		sb.WriteString("\n\n")
		sb.WriteString(helpStyle.Render("Back: Esc | Quit: q"))
		return sb.String()
	}

	const pageSize = 15
	end := min(m.LogViewScroll+pageSize, len(m.AllLogs))
	for _, e := range m.AllLogs[m.LogViewScroll:end] {
		sb.WriteString(fmt.Sprintf("%s %s\n", logTagStyle.Render(fmt.Sprintf("%-22s", e.ProjectName)), m.formatLogEntry(e.Log)))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(fmt.Sprintf("%d-%d of %d | Scroll: Up/Down | Back: Esc | Quit: q", m.LogViewScroll+1, end, len(m.AllLogs))))
	return sb.String()
}

func (m *Model) consentView() string {
	form := fmt.Sprintf("%s\n\n%s\n\n%s",
		logHeaderStyle.Render("We use cookies"),
		"We store preferences to improve your experience, analyse usage and deliver relevant features. Necessary cookies are required for the app to work.",
		helpStyle.Render("a: Accept all | r: Necessary only | q: Quit"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Padding(0, 1).Render(form),
	)
}

func (m *Model) notesInputView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("Log Work Session"))
	sb.WriteString("\n\n")

	durationStr := ""
	if m.PendingLog != nil {
		durationStr = timelog.FormatHours(m.PendingLog.Duration)
	}

	label := inputStyle.Render("→ Notes: ")
	value := inputStyle.Render(m.NotesInput + "█")

	form := fmt.Sprintf(
		"%s\n\n%s%s\n\n%s",
		fmt.Sprintf("Session duration: %s", timerDisplayStyle.Render(durationStr)),
		label, value,
		helpStyle.Render("Enter: Save | Esc: Skip (no notes)"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	)
}

func (m *Model) entryFormView() string {
	projectName := "No project selected"
	if m.Selected != nil {
		projectName = m.Selected.Name
	}

	fields := []struct {
		label string
		value string
	}{
		{"Hours", m.EntryHours},
		{"Work notes", m.EntryNotes},
		{"Deviations", m.EntryDeviations},
	}

	var rows []string
	for i, f := range fields {
		marker := "  "
		label := inputInactiveStyle.Render(fmt.Sprintf("%s%s: ", marker, f.label))
		value := f.value
		if i == m.InputFocus {
			marker = "→ "
			label = inputStyle.Render(fmt.Sprintf("%s%s: ", marker, f.label))
			value = inputStyle.Render(value + "█")
		}
		rows = append(rows, label+value)
	}

	form := fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n%s",
		logHeaderStyle.Render("Quick time entry"),
		inactiveStyle.Render(projectName),
		strings.Join(rows, "\n\n"),
		helpStyle.Render("Tab: Next field | Enter: Next/Save | Esc: Cancel"),
		m.statusLine(),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(56).Padding(0, 1).Render(form),
	)
}

func (m *Model) formatLogEntry(l timelog.TimeLog) string {
	timeStr := logTimeStyle.Render(l.StoppedAt.Local().Format("Jan 02 15:04"))
	dur := timelog.FormatHours(l.Duration)
	notes := ""
	if l.Notes != "" {
		notes = " " + logTagStyle.Render("["+l.Notes+"]")
	}
	if l.Deviations != "" {
		notes += " " + warningStyle.Render("!"+l.Deviations)
	}
	return fmt.Sprintf("  %s  %s%s", timeStr, dur, notes)
}
