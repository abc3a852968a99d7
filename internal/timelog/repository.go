package timelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, log *TimeLog) error {
	if log.Source == "" {
		log.Source = SourceClock
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO time_logs (project_id, started_at, stopped_at, duration, notes, deviations, source) VALUES (?, ?, ?, ?, ?, ?, ?)",
		log.ProjectID,
		log.StartedAt.UTC().Format(time.RFC3339),
		log.StoppedAt.UTC().Format(time.RFC3339),
		int64(log.Duration),
		log.Notes,
		log.Deviations,
		string(log.Source),
	)
	if err != nil {
		return fmt.Errorf("create time log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]TimeLog, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, project_id, started_at, stopped_at, duration, notes, deviations, source FROM time_logs WHERE project_id = ? ORDER BY started_at DESC, id DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var logs []TimeLog
	for rows.Next() {
		var l TimeLog
		if err := scanLog(rows, &l, nil); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListBetween returns entries that started in [from, to), newest first.
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]Entry, error) {
	return r.listEntries(ctx,
		`WHERE tl.started_at >= ? AND tl.started_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
}

func (r *Repository) ListAll(ctx context.Context) ([]Entry, error) {
	return r.listEntries(ctx, "")
}

func (r *Repository) listEntries(ctx context.Context, where string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tl.id, tl.project_id, tl.started_at, tl.stopped_at, tl.duration, tl.notes, tl.deviations, tl.source, p.name
		 FROM time_logs tl
		 JOIN projects p ON tl.project_id = p.id
		 `+where+`
		 ORDER BY tl.started_at DESC, tl.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := scanLog(rows, &e.Log, &e.ProjectName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanLog(rows *sql.Rows, l *TimeLog, projectName *string) error {
	var startedAt, stoppedAt, source string
	var duration int64
	dest := []any{&l.ID, &l.ProjectID, &startedAt, &stoppedAt, &duration, &l.Notes, &l.Deviations, &source}
	if projectName != nil {
		dest = append(dest, projectName)
	}
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("scan time log: %w", err)
	}

	var err error
	if l.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return fmt.Errorf("parse started_at: %w", err)
	}
	if l.StoppedAt, err = time.Parse(time.RFC3339, stoppedAt); err != nil {
		return fmt.Errorf("parse stopped_at: %w", err)
	}
	l.Duration = time.Duration(duration)
	l.Source = Source(source)
	return nil
}
