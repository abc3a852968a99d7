package location

import (
	"context"
	"errors"
	"time"

	"tidclock/internal/geo"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

// Position is a single fix reported by the location service.
type Position struct {
	Point          geo.GeoPoint
	AccuracyMeters float64
	Timestamp      time.Time
}

// Age returns how old the fix is at now.
func (p Position) Age(now time.Time) time.Duration {
	if p.Timestamp.IsZero() || now.Before(p.Timestamp) {
		return 0
	}
	return now.Sub(p.Timestamp)
}

// Options control a single position request. MaxAge is the oldest
// previously obtained fix the caller accepts; zero forces a fresh fix.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaxAge:       5 * time.Minute,
	}
}

type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// Message turns a location error into text for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Location access was denied. Enable location access in your settings."
	case errors.Is(err, ErrPositionUnavailable):
		return "Position information is not available."
	case errors.Is(err, ErrTimeout):
		return "Timed out while getting your position."
	default:
		return "Could not get your position."
	}
}

// deadlineErr maps an expired context to ErrTimeout and leaves other
// context errors alone.
func deadlineErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ctx.Err()
}
