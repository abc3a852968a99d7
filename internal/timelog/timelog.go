package timelog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tidclock/internal/timer"
)

var (
	ErrNoProject    = errors.New("select a project first")
	ErrInvalidHours = errors.New("hours must be between 0.5 and 24 in steps of 0.5")
)

type Source string

const (
	SourceClock  Source = "clock"
	SourceManual Source = "manual"
)

// TimeLog is recorded working time on a project.
type TimeLog struct {
	ID         int64
	ProjectID  int64
	StartedAt  time.Time
	StoppedAt  time.Time
	Duration   time.Duration
	Notes      string
	Deviations string
	Source     Source
}

// FromInterval turns a closed work session into a log entry.
func FromInterval(iv timer.Interval) TimeLog {
	return TimeLog{
		ProjectID: iv.ProjectID,
		StartedAt: iv.StartedAt,
		StoppedAt: iv.StoppedAt,
		Duration:  iv.Duration,
		Source:    SourceClock,
	}
}

// ManualEntry is time reported after the fact instead of clocked.
type ManualEntry struct {
	ProjectID  int64
	Hours      float64
	Notes      string
	Deviations string
}

func (e ManualEntry) Validate() error {
	if e.ProjectID == 0 {
		return ErrNoProject
	}
	if math.IsNaN(e.Hours) || e.Hours <= 0 || e.Hours > 24 {
		return ErrInvalidHours
	}
	if halves := e.Hours * 2; halves != math.Trunc(halves) {
		return ErrInvalidHours
	}
	return nil
}

// ToLog lays the entry out as ending at now.
func (e ManualEntry) ToLog(now time.Time) (TimeLog, error) {
	if err := e.Validate(); err != nil {
		return TimeLog{}, err
	}
	d := time.Duration(e.Hours * float64(time.Hour))
	return TimeLog{
		ProjectID:  e.ProjectID,
		StartedAt:  now.Add(-d),
		StoppedAt:  now,
		Duration:   d,
		Notes:      e.Notes,
		Deviations: e.Deviations,
		Source:     SourceManual,
	}, nil
}

// FormatHours renders d as H:MM.
func FormatHours(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Minute)
	return fmt.Sprintf("%d:%02d", int(d/time.Hour), int((d%time.Hour)/time.Minute))
}
