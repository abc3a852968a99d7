package geofence

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"tidclock/internal/geo"
	"tidclock/internal/location"
)

// Result is the outcome of a completed position check against a site.
type Result struct {
	Position       location.Position
	DistanceMeters float64
	RadiusMeters   float64
	WithinRange    bool
}

type Checker struct {
	provider location.Provider
	opts     location.Options
}

func NewChecker(provider location.Provider, opts location.Options) *Checker {
	return &Checker{provider: provider, opts: opts}
}

// Check asks the location service once for the device position and compares
// it with the target. Provider failures are returned as-is so callers can tell
// them apart from an out-of-range result.
func (c *Checker) Check(ctx context.Context, target geo.ProjectLocation) (Result, error) {
	pos, err := c.provider.CurrentPosition(ctx, c.opts)
	if err != nil {
		slog.Info("geofence: position request failed", "project_id", target.ProjectID, "error", err)
		return Result{}, err
	}
	if err := pos.Point.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", location.ErrPositionUnavailable, err)
	}

	distance := geo.Distance(pos.Point, target.Point)
	res := Result{
		Position:       pos,
		DistanceMeters: distance,
		RadiusMeters:   target.RadiusMeters,
		WithinRange:    geo.IsWithinRadius(pos.Point, target),
	}

	slog.Info("geofence: checked position",
		"project_id", target.ProjectID,
		"distance_m", math.Round(distance),
		"radius_m", target.RadiusMeters,
		"within", res.WithinRange,
	)
	return res, nil
}

// OutOfRangeMessage tells the user how far off site they are.
func OutOfRangeMessage(r Result) string {
	return fmt.Sprintf("You are %.0fm from the project. You must be within %.0fm to clock in.",
		math.Round(r.DistanceMeters), r.RadiusMeters)
}
