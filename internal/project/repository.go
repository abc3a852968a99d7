package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"tidclock/internal/geo"
)

const projectColumns = "id, name, city, status, latitude, longitude, radius_m, require_location"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (Project, error) {
	var p Project
	var status string
	var lat, lon, radius sql.NullFloat64
	var require int
	if err := row.Scan(&p.ID, &p.Name, &p.City, &status, &lat, &lon, &radius, &require); err != nil {
		return Project{}, err
	}
	p.Status = Status(status)
	p.RequireLocation = require == 1
	if lat.Valid && lon.Valid && radius.Valid {
		p.Site = &Site{
			Point:        geo.GeoPoint{Lat: lat.Float64, Lon: lon.Float64},
			RadiusMeters: radius.Float64,
		}
	}
	return p, nil
}

func siteArgs(p *Project) (lat, lon, radius any) {
	if p.Site == nil {
		return nil, nil, nil
	}
	return p.Site.Point.Lat, p.Site.Point.Lon, p.Site.RadiusMeters
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *Repository) GetAll(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *Project) error {
	if err := validateSite(p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	lat, lon, radius := siteArgs(p)
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO projects (name, city, status, latitude, longitude, radius_m, require_location) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Name, p.City, string(p.Status), lat, lon, radius, boolInt(p.RequireLocation),
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *Repository) Update(ctx context.Context, p *Project) error {
	if err := validateSite(p); err != nil {
		return err
	}
	lat, lon, radius := siteArgs(p)
	result, err := r.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, city = ?, status = ?, latitude = ?, longitude = ?, radius_m = ?, require_location = ? WHERE id = ?",
		p.Name, p.City, string(p.Status), lat, lon, radius, boolInt(p.RequireLocation), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return nil
}

// Seed inserts the sample projects into an empty table.
func (r *Repository) Seed(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, p := range Samples() {
		p := p
		if err := r.Create(ctx, &p); err != nil {
			return err
		}
	}
	slog.Info("project: seeded sample projects", "count", len(Samples()))
	return nil
}

func validateSite(p *Project) error {
	if p.Site == nil {
		return nil
	}
	return p.Site.Point.Validate()
}
