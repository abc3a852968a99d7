package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	kungsgatan = GeoPoint{Lat: 59.3293, Lon: 18.0686}
	sodermalm  = GeoPoint{Lat: 59.3157, Lon: 18.0647}
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 0.0, Distance(kungsgatan, kungsgatan))

	d := Distance(sodermalm, kungsgatan)
	assert.InDelta(t, 1525, d, 25)
	assert.InDelta(t, d, Distance(kungsgatan, sodermalm), 1e-9)
}

func TestDistanceOneDegreeOfLatitude(t *testing.T) {
	d := Distance(GeoPoint{Lat: 0, Lon: 0}, GeoPoint{Lat: 1, Lon: 0})
	assert.InDelta(t, 111195, d, 1)
}

func TestIsWithinRadius(t *testing.T) {
	target := ProjectLocation{ProjectID: 1, Point: kungsgatan, RadiusMeters: 50}

	cases := []struct {
		name    string
		current GeoPoint
		radius  float64
		want    bool
	}{
		{"same point", kungsgatan, 50, true},
		{"other site", sodermalm, 50, false},
		{"other site with wide radius", sodermalm, 2000, true},
		{"zero radius same point", kungsgatan, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tg := target
			tg.RadiusMeters = c.radius
			assert.Equal(t, c.want, IsWithinRadius(c.current, tg))
		})
	}
}

func TestIsWithinRadiusBoundary(t *testing.T) {
	d := Distance(sodermalm, kungsgatan)
	exact := ProjectLocation{Point: kungsgatan, RadiusMeters: d}
	assert.True(t, IsWithinRadius(sodermalm, exact))

	exact.RadiusMeters = d - 0.001
	assert.False(t, IsWithinRadius(sodermalm, exact))
}

func TestGeoPointValidate(t *testing.T) {
	valid := []GeoPoint{kungsgatan, {Lat: -90, Lon: -180}, {Lat: 90, Lon: 180}}
	invalid := []GeoPoint{{Lat: 91, Lon: 0}, {Lat: 0, Lon: -181}, {Lat: -90.5, Lon: 10}}

	for _, p := range valid {
		assert.NoError(t, p.Validate(), p.String())
	}
	for _, p := range invalid {
		err := p.Validate()
		assert.True(t, errors.Is(err, ErrInvalidPoint), p.String())
	}
}
