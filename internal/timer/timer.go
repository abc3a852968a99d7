package timer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoProjectSelected   = errors.New("no project selected")
	ErrLocationNotVerified = errors.New("location not verified")
	ErrNotWorking          = errors.New("not clocked in")
)

type State int

const (
	Idle State = iota
	Working
)

func (s State) String() string {
	if s == Working {
		return "Working"
	}
	return "Idle"
}

type ClockInRequest struct {
	ProjectID        int64
	LocationRequired bool
	LocationVerified bool
}

// Interval is a closed work session.
type Interval struct {
	ProjectID int64
	StartedAt time.Time
	StoppedAt time.Time
	Duration  time.Duration
}

// Session is the clock-in/clock-out state machine. The start instant is set
// if and only if the session is Working; elapsed time is always derived from
// it, never accumulated.
type Session struct {
	start     time.Time
	projectID int64
	now       func() time.Time
}

func New() *Session {
	return &Session{now: time.Now}
}

// NewWithClock is New with an injected clock.
func NewWithClock(now func() time.Time) *Session {
	return &Session{now: now}
}

func (s *Session) State() State {
	if s.start.IsZero() {
		return Idle
	}
	return Working
}

func (s *Session) Running() bool {
	return s.State() == Working
}

func (s *Session) StartedAt() time.Time {
	return s.start
}

func (s *Session) ProjectID() int64 {
	return s.projectID
}

// ClockIn moves Idle to Working. Calling it while Working changes nothing.
func (s *Session) ClockIn(req ClockInRequest) error {
	if s.Running() {
		return nil
	}
	if req.ProjectID == 0 {
		return ErrNoProjectSelected
	}
	if req.LocationRequired && !req.LocationVerified {
		return ErrLocationNotVerified
	}

	s.start = s.now()
	s.projectID = req.ProjectID
	return nil
}

// ClockOut moves Working to Idle and returns the closed interval.
func (s *Session) ClockOut() (Interval, error) {
	if !s.Running() {
		return Interval{}, ErrNotWorking
	}

	stoppedAt := s.now()
	iv := Interval{
		ProjectID: s.projectID,
		StartedAt: s.start,
		StoppedAt: stoppedAt,
		Duration:  clamp(stoppedAt.Sub(s.start)),
	}
	s.start = time.Time{}
	s.projectID = 0
	return iv, nil
}

func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.Running() {
		return 0
	}
	return clamp(now.Sub(s.start))
}

// Display renders the elapsed time as zero-padded hours and minutes.
func (s *Session) Display(now time.Time) string {
	return FormatHHMM(s.Elapsed(now))
}

func FormatHHMM(d time.Duration) string {
	d = clamp(d)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoProjectSelected):
		return "Select a project before clocking in."
	case errors.Is(err, ErrLocationNotVerified):
		return "Your location must be verified before clocking in."
	case errors.Is(err, ErrNotWorking):
		return "You are not clocked in."
	case err != nil:
		return err.Error()
	}
	return ""
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
