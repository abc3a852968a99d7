package project

import (
	"errors"

	"tidclock/internal/geo"
)

var (
	ErrNotFound         = errors.New("project not found")
	ErrProjectNotActive = errors.New("project is not active")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPaused:
		return "Paused"
	case StatusCompleted:
		return "Completed"
	}
	return "Unknown"
}

// Site is the registered position of a project's work site.
type Site struct {
	Point        geo.GeoPoint
	RadiusMeters float64
}

type Project struct {
	ID              int64
	Name            string
	City            string
	Status          Status
	Site            *Site
	RequireLocation bool
}

func NewProject(name, city string) *Project {
	return &Project{
		Name:   name,
		City:   city,
		Status: StatusActive,
	}
}

// Location returns the geofence target for the project, if it has a site.
func (p *Project) Location() (geo.ProjectLocation, bool) {
	if p.Site == nil {
		return geo.ProjectLocation{}, false
	}
	return geo.ProjectLocation{
		ProjectID:    p.ID,
		Point:        p.Site.Point,
		RadiusMeters: p.Site.RadiusMeters,
	}, true
}

// NeedsLocationCheck reports whether clocking in requires a verified position.
func (p *Project) NeedsLocationCheck() bool {
	return p.RequireLocation && p.Site != nil
}

func (p *Project) CanClockIn() error {
	if p.Status != StatusActive {
		return ErrProjectNotActive
	}
	return nil
}

// Samples are the projects a fresh database starts with.
func Samples() []Project {
	return []Project{
		{
			Name:   "Villa Södermalm",
			City:   "Stockholm",
			Status: StatusActive,
			Site: &Site{
				Point:        geo.GeoPoint{Lat: 59.3157, Lon: 18.0647},
				RadiusMeters: 100,
			},
			RequireLocation: true,
		},
		{
			Name:   "Kungsgatan 214",
			City:   "Stockholm",
			Status: StatusActive,
			Site: &Site{
				Point:        geo.GeoPoint{Lat: 59.3293, Lon: 18.0686},
				RadiusMeters: 50,
			},
			RequireLocation: true,
		},
		{Name: "Kontorskomplex Malmö", City: "Malmö", Status: StatusActive},
		{Name: "Skola Göteborg", City: "Göteborg", Status: StatusActive},
		{Name: "Bostäder Växjö", City: "Växjö", Status: StatusPaused},
	}
}
