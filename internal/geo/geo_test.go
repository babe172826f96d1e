package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	a := Point{Lat: 14.7708985, Lng: -17.412645}

	assert.InDelta(t, 0, Haversine(a, a), 1e-9)

	// One thousandth of a degree of latitude is about 111 m.
	b := Point{Lat: a.Lat + 0.001, Lng: a.Lng}
	assert.InDelta(t, 111.19, Haversine(a, b), 0.1)
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

func TestMovedEnough(t *testing.T) {
	origin := Point{Lat: 14.77, Lng: -17.41}

	assert.True(t, MovedEnough(nil, origin))
	assert.False(t, MovedEnough(&origin, Point{Lat: 14.77005, Lng: -17.41}), "about 5.5 m")
	assert.True(t, MovedEnough(&origin, Point{Lat: 14.7701, Lng: -17.41}), "about 11 m")
}

func TestBoundsContains(t *testing.T) {
	b := DefaultArea().Creation

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", b.Center(), true},
		{"south west corner", b.SouthWest, true},
		{"north east corner", b.NorthEast, true},
		{"north of box", Point{Lat: 14.78, Lng: -17.41}, false},
		{"west of box", Point{Lat: 14.77, Lng: -17.42}, false},
		{"other hemisphere", Point{Lat: -14.77, Lng: 17.41}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Contains(tt.p))
		})
	}
}

func TestAreaCenterIsMeanOfCreationBounds(t *testing.T) {
	c := DefaultArea().Center()
	assert.InDelta(t, (14.766540+14.775257)/2, c.Lat, 1e-9)
	assert.InDelta(t, (-17.416938+-17.408352)/2, c.Lng, 1e-9)
}

func TestCheckCreation(t *testing.T) {
	area := DefaultArea()
	assert.NoError(t, area.CheckCreation(area.Center()))
	assert.ErrorIs(t, area.CheckCreation(Point{Lat: 0, Lng: 0}), ErrOutOfBounds)
}

func TestParseLocation(t *testing.T) {
	assert.Equal(t, Point{Lat: 14.77, Lng: -17.41}, ParseLocation("14.77,-17.41"))
	assert.Equal(t, Point{Lat: 14.77, Lng: -17.41}, ParseLocation(" 14.77 , -17.41 "))
	assert.Equal(t, DefaultPoint, ParseLocation(""))
	assert.Equal(t, DefaultPoint, ParseLocation("abc,def"))
	assert.Equal(t, DefaultPoint, ParseLocation("1,2,3"))
	assert.Equal(t, DefaultPoint, ParseLocation("200,10"))
}

func TestFormatLocationRoundTrip(t *testing.T) {
	p := Point{Lat: 14.770123, Lng: -17.41234}
	assert.Equal(t, "14.770123,-17.41234", FormatLocation(p))
	assert.Equal(t, p, ParseLocation(FormatLocation(p)))
}

func TestLoadArea(t *testing.T) {
	area, err := LoadArea("")
	require.NoError(t, err)
	assert.Equal(t, DefaultArea(), area)

	path := filepath.Join(t.TempDir(), "area.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Test\nzoom: 15\n"), 0o600))

	area, err = LoadArea(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", area.Name)
	assert.Equal(t, 15, area.Zoom)
	assert.Equal(t, DefaultArea().Creation, area.Creation)
}

func TestLoadArea_RejectsInvertedBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.yaml")
	body := `
creation_bounds:
  south_west: {lat: 14.8, lng: -17.4}
  north_east: {lat: 14.7, lng: -17.5}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := LoadArea(path)
	assert.Error(t, err)
}
