package geofence

import "tidclock/internal/location"

type Status int

const (
	StatusNotRequired Status = iota
	StatusPending
	StatusChecking
	StatusVerified
	StatusOutOfRange
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotRequired:
		return "Not required"
	case StatusPending:
		return "Waiting"
	case StatusChecking:
		return "Checking..."
	case StatusVerified:
		return "Location approved"
	case StatusOutOfRange:
		return "Wrong location"
	case StatusFailed:
		return "Location error"
	}
	return "Unknown"
}

// Verification is the location state of the selected project as the
// clock screen sees it.
type Verification struct {
	ProjectID int64
	Status    Status
	Result    *Result
	Err       error
}

func NotRequired(projectID int64) Verification {
	return Verification{ProjectID: projectID, Status: StatusNotRequired}
}

func Pending(projectID int64) Verification {
	return Verification{ProjectID: projectID, Status: StatusPending}
}

func (v Verification) Checking() Verification {
	return Verification{ProjectID: v.ProjectID, Status: StatusChecking}
}

// Resolve records the outcome of a Check.
func (v Verification) Resolve(res Result, err error) Verification {
	out := Verification{ProjectID: v.ProjectID}
	switch {
	case err != nil:
		out.Status = StatusFailed
		out.Err = err
	case res.WithinRange:
		out.Status = StatusVerified
		out.Result = &res
	default:
		out.Status = StatusOutOfRange
		out.Result = &res
	}
	return out
}

// Satisfied reports whether clock-in may proceed as far as location goes.
func (v Verification) Satisfied() bool {
	return v.Status == StatusNotRequired || v.Status == StatusVerified
}

func (v Verification) Message() string {
	switch v.Status {
	case StatusFailed:
		return location.Message(v.Err)
	case StatusOutOfRange:
		if v.Result != nil {
			return OutOfRangeMessage(*v.Result)
		}
	case StatusVerified:
		return "You are at the right location."
	}
	return ""
}
