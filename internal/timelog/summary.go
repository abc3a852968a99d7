package timelog

import (
	"sort"
	"time"
)

// Entry is a TimeLog together with the name of its project.
type Entry struct {
	Log         TimeLog
	ProjectName string
}

type ProjectTotal struct {
	ProjectID   int64
	ProjectName string
	Total       time.Duration
}

type DailySummary struct {
	Day       time.Time
	Entries   []Entry
	Total     time.Duration
	ByProject []ProjectTotal
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Summarize totals the entries that started on day. Projects are ordered by
// total, largest first.
func Summarize(entries []Entry, day time.Time) DailySummary {
	from := StartOfDay(day)
	to := from.AddDate(0, 0, 1)

	s := DailySummary{Day: from}
	totals := map[int64]*ProjectTotal{}
	for _, e := range entries {
		start := e.Log.StartedAt.In(day.Location())
		if start.Before(from) || !start.Before(to) {
			continue
		}
		s.Entries = append(s.Entries, e)
		s.Total += e.Log.Duration

		pt, ok := totals[e.Log.ProjectID]
		if !ok {
			pt = &ProjectTotal{ProjectID: e.Log.ProjectID, ProjectName: e.ProjectName}
			totals[e.Log.ProjectID] = pt
		}
		pt.Total += e.Log.Duration
	}

	for _, pt := range totals {
		s.ByProject = append(s.ByProject, *pt)
	}
	sort.Slice(s.ByProject, func(i, j int) bool {
		if s.ByProject[i].Total == s.ByProject[j].Total {
			return s.ByProject[i].ProjectID < s.ByProject[j].ProjectID
		}
		return s.ByProject[i].Total > s.ByProject[j].Total
	})
	return s
}
