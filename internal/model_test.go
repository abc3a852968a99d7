package internal

import (
	"context"
	"testing"
	"time"

	"tidclock/internal/consent"
	"tidclock/internal/geo"
	"tidclock/internal/geofence"
	"tidclock/internal/location"
	"tidclock/internal/project"
	"tidclock/internal/storage"
	"tidclock/internal/timelog"
	"tidclock/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	pos location.Position
	err error
}

func (f *fakeDevice) CurrentPosition(ctx context.Context, opts location.Options) (location.Position, error) {
	return f.pos, f.err
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

var (
	kungsgatan = geo.GeoPoint{Lat: 59.3293, Lon: 18.0686}
	sodermalm  = geo.GeoPoint{Lat: 59.3157, Lon: 18.0647}
)

// Seeded project order.
const (
	idxVilla = iota
	idxKungsgatan
	idxMalmo
	idxSkola
	idxVaxjo
)

type harness struct {
	m      *Model
	clock  *fakeClock
	device *fakeDevice
	deps   Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	projects := project.NewRepository(db)
	require.NoError(t, projects.Seed(context.Background()))

	h := &harness{
		clock:  &fakeClock{t: time.Date(2024, 5, 6, 8, 0, 0, 0, time.Local)},
		device: &fakeDevice{pos: location.Position{Point: kungsgatan, AccuracyMeters: 5}},
	}
	h.deps = Deps{
		Projects: projects,
		Logs:     timelog.NewRepository(db),
		Consent:  consent.NewManager(storage.NewKV(db)),
		Checker:  geofence.NewChecker(h.device, location.DefaultOptions()),
		Tick:     time.Millisecond,
		Now:      h.clock.Now,
	}
	h.m, err = NewModel(h.deps)
	require.NoError(t, err)
	t.Cleanup(func() { h.m.Close() })
	return h
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.m.Update(key(k))
	}
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.m.Update(key(string(r)))
	}
}

// selectAt moves the cursor to idx, selects the project and delivers the
// location check result if one was started.
func (h *harness) selectAt(t *testing.T, idx int) {
	t.Helper()
	for h.m.Cursor < idx {
		h.press("j")
	}
	for h.m.Cursor > idx {
		h.press("k")
	}
	if cmd := h.press("enter"); cmd != nil {
		msg := cmd()
		_, ok := msg.(MsgLocationChecked)
		require.True(t, ok)
		h.m.Update(msg)
	}
}

func (h *harness) dismissConsent() {
	h.press("r")
}

func TestConsentBannerShownOnce(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.m.ShowConsent)
	assert.Contains(t, h.m.View(), "We use cookies")

	h.press("x")
	assert.True(t, h.m.ShowConsent)

	h.press("a")
	assert.False(t, h.m.ShowConsent)
	assert.Equal(t, consent.All(), h.m.Consent)

	again, err := NewModel(h.deps)
	require.NoError(t, err)
	defer again.Close()
	assert.False(t, again.ShowConsent)
	assert.Equal(t, consent.All(), again.Consent)
}

func TestClockInWithoutProject(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()

	cmd := h.press("c")
	assert.Nil(t, cmd)
	assert.Equal(t, timer.Idle, h.m.Session.State())
	assert.True(t, h.m.StatusErr)
	assert.Equal(t, timer.Message(timer.ErrNoProjectSelected), h.m.Status)
}

func TestClockInAndOutWithoutLocationRequirement(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxMalmo)
	assert.Equal(t, geofence.StatusNotRequired, h.m.Verification.Status)

	cmd := h.press("c")
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Working, h.m.Session.State())
	assert.Equal(t, h.clock.t, h.m.Session.StartedAt())
	assert.Equal(t, "00:00", h.m.WorkTime)
	assert.Contains(t, h.m.View(), "Working now")

	h.clock.t = h.clock.t.Add(90 * time.Second)
	tick := cmd()
	_, next := h.m.Update(tick)
	assert.Equal(t, "00:01", h.m.WorkTime)
	assert.NotNil(t, next)

	h.clock.t = h.clock.t.Add(2 * time.Hour)
	assert.Nil(t, h.press("c"))
	assert.Equal(t, timer.Idle, h.m.Session.State())
	assert.Equal(t, "00:00", h.m.WorkTime)
	require.True(t, h.m.ShowNotes)

	_, next = h.m.Update(tick)
	assert.Nil(t, next, "ticks stop after clocking out")
	assert.Equal(t, "00:00", h.m.WorkTime)

	h.typeText("Poured slab")
	h.press("enter")
	assert.False(t, h.m.ShowNotes)
	require.Len(t, h.m.RecentLogs, 1)
	assert.Equal(t, "Poured slab", h.m.RecentLogs[0].Notes)
	assert.Equal(t, 2*time.Hour+90*time.Second, h.m.RecentLogs[0].Duration)
}

func TestRepeatedClockInIsNoop(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxSkola)

	require.NotNil(t, h.m.ClockIn())
	start := h.m.Session.StartedAt()
	h.clock.t = h.clock.t.Add(time.Minute)

	assert.Nil(t, h.m.ClockIn())
	assert.Equal(t, start, h.m.Session.StartedAt())
}

func TestClockInAfterVerifiedLocation(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxKungsgatan)

	assert.Equal(t, geofence.StatusVerified, h.m.Verification.Status)
	assert.NotNil(t, h.press("c"))
	assert.Equal(t, timer.Working, h.m.Session.State())
}

func TestClockInRejectedOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.device.pos.Point = sodermalm
	h.selectAt(t, idxKungsgatan)

	assert.Equal(t, geofence.StatusOutOfRange, h.m.Verification.Status)
	assert.Contains(t, h.m.Status, "within 50m")

	assert.Nil(t, h.press("c"))
	assert.Equal(t, timer.Idle, h.m.Session.State())
	assert.Equal(t, timer.Message(timer.ErrLocationNotVerified), h.m.Status)

	// Moving to the site and checking again allows clock-in.
	h.device.pos.Point = kungsgatan
	cmd := h.press("v")
	require.NotNil(t, cmd)
	h.m.Update(cmd())
	assert.Equal(t, geofence.StatusVerified, h.m.Verification.Status)
	assert.NotNil(t, h.press("c"))
}

func TestLocationFailuresAreDistinct(t *testing.T) {
	for _, want := range []error{location.ErrPermissionDenied, location.ErrPositionUnavailable, location.ErrTimeout} {
		h := newHarness(t)
		h.dismissConsent()
		h.device.err = want
		h.selectAt(t, idxVilla)

		assert.Equal(t, geofence.StatusFailed, h.m.Verification.Status)
		assert.ErrorIs(t, h.m.Verification.Err, want)
		assert.Equal(t, location.Message(want), h.m.Status)

		h.press("c")
		assert.Equal(t, timer.Idle, h.m.Session.State())
	}
}

func TestStaleLocationResultIgnored(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()

	cmd := h.press("j", "enter")
	require.NotNil(t, cmd)
	stale := cmd()

	h.selectAt(t, idxMalmo)
	h.m.Update(stale)
	assert.Equal(t, geofence.StatusNotRequired, h.m.Verification.Status)
	assert.Equal(t, h.m.Projects[idxMalmo].ID, h.m.Verification.ProjectID)
}

func TestOnlyLatestLocationCheckApplies(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.device.pos.Point = sodermalm

	first := h.press("j", "enter")
	require.NotNil(t, first)
	offSite := first()

	h.device.pos.Point = kungsgatan
	second := h.press("enter")
	require.NotNil(t, second)
	onSite := second()

	h.m.Update(offSite)
	assert.Equal(t, geofence.StatusChecking, h.m.Verification.Status)

	h.m.Update(onSite)
	assert.Equal(t, geofence.StatusVerified, h.m.Verification.Status)
}

func TestEarlierVerifiedCheckDoesNotOpenGate(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()

	first := h.press("j", "enter")
	require.NotNil(t, first)
	onSite := first()

	h.device.pos.Point = sodermalm
	second := h.press("enter")
	require.NotNil(t, second)
	offSite := second()

	h.m.Update(onSite)
	h.m.Update(offSite)
	assert.Equal(t, geofence.StatusOutOfRange, h.m.Verification.Status)

	assert.Nil(t, h.press("c"))
	assert.Equal(t, timer.Idle, h.m.Session.State())
}

func TestCannotSwitchProjectWhileWorking(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxMalmo)
	h.press("c")

	h.press("j", "enter")
	assert.Equal(t, h.m.Projects[idxMalmo].ID, h.m.Selected.ID)
	assert.True(t, h.m.StatusErr)
}

func TestPausedProjectRejected(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxVaxjo)

	assert.Nil(t, h.press("c"))
	assert.Equal(t, timer.Idle, h.m.Session.State())
	assert.Contains(t, h.m.Status, "paused")
}

func TestManualEntry(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxSkola)

	h.press("m")
	require.True(t, h.m.ShowEntryForm)
	h.typeText("7x.5")
	assert.Equal(t, "7.5", h.m.EntryHours)
	h.press("enter")
	h.typeText("Framing")
	h.press("enter")
	h.typeText("Rain")
	h.press("enter")

	assert.False(t, h.m.ShowEntryForm)
	require.Len(t, h.m.RecentLogs, 1)
	l := h.m.RecentLogs[0]
	assert.Equal(t, timelog.SourceManual, l.Source)
	assert.Equal(t, 7*time.Hour+30*time.Minute, l.Duration)
	assert.Equal(t, "Framing", l.Notes)
	assert.Equal(t, "Rain", l.Deviations)
}

func TestManualEntryValidation(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()

	h.press("m")
	h.typeText("8")
	h.press("enter", "enter", "enter")
	assert.True(t, h.m.ShowEntryForm)
	assert.Equal(t, timelog.ErrNoProject.Error(), h.m.Status)

	h.press("esc")
	assert.False(t, h.m.ShowEntryForm)
}

func TestOverviewAndLogsTabs(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxMalmo)
	h.press("c")
	h.clock.t = h.clock.t.Add(3 * time.Hour)
	h.press("c", "esc")

	h.press("2")
	assert.Equal(t, TabOverview, h.m.Tab)
	assert.Equal(t, 3*time.Hour, h.m.Today.Total)
	assert.Contains(t, h.m.View(), "Kontorskomplex Malmö")

	h.press("tab")
	assert.Equal(t, TabLogs, h.m.Tab)
	assert.Len(t, h.m.AllLogs, 1)

	h.press("esc")
	assert.Equal(t, TabClock, h.m.Tab)
}

func TestCloseLogsRunningSession(t *testing.T) {
	h := newHarness(t)
	h.dismissConsent()
	h.selectAt(t, idxMalmo)
	h.press("c")
	h.clock.t = h.clock.t.Add(45 * time.Minute)

	require.NoError(t, h.m.Close())
	assert.Equal(t, timer.Idle, h.m.Session.State())

	logs, err := h.deps.Logs.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 45*time.Minute, logs[0].Log.Duration)
}
