package location

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mode selects how a StaticProvider answers.
type Mode string

const (
	ModeFix         Mode = "fix"
	ModeDenied      Mode = "denied"
	ModeUnavailable Mode = "unavailable"
	ModeTimeout     Mode = "timeout"
)

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeFix, ModeDenied, ModeUnavailable, ModeTimeout:
		return m, nil
	case "":
		return ModeFix, nil
	}
	return "", fmt.Errorf("unknown location mode %q", s)
}

// StaticProvider stands in for a GPS receiver on machines that have none.
// It reports a configured fix, or fails the way a platform location
// service does.
type StaticProvider struct {
	Mode    Mode
	Fix     Position
	Latency time.Duration
	Now     func() time.Time
}

func (p *StaticProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if p.Mode == ModeTimeout {
		if _, ok := ctx.Deadline(); !ok && opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		<-ctx.Done()
		return Position{}, deadlineErr(ctx)
	}

	if p.Latency > 0 {
		t := time.NewTimer(p.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Position{}, deadlineErr(ctx)
		case <-t.C:
		}
	}

	switch p.Mode {
	case ModeDenied:
		return Position{}, ErrPermissionDenied
	case ModeUnavailable:
		return Position{}, ErrPositionUnavailable
	}

	if err := p.Fix.Point.Validate(); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}

	pos := p.Fix
	pos.Timestamp = p.now()
	return pos, nil
}

func (p *StaticProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
