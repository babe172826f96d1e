// Package geo holds the distance and containment math used to place content
// on the neighborhood map.
package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	earthRadiusMeters = 6371e3

	// MinMovementMeters is the smallest position change worth recording.
	MinMovementMeters = 10.0
)

var ErrOutOfBounds = errors.New("location is outside the allowed area")

// DefaultPoint is used when a stored location string cannot be parsed.
var DefaultPoint = Point{Lat: 14.7708985, Lng: -17.412645}

type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether the point is a real coordinate.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// MovedEnough reports whether next is far enough from prev to be recorded.
// A nil prev always counts as movement.
func MovedEnough(prev *Point, next Point) bool {
	if prev == nil {
		return true
	}
	return Haversine(*prev, next) >= MinMovementMeters
}

// Bounds is an axis-aligned lat/lng rectangle.
type Bounds struct {
	SouthWest Point `json:"south_west" yaml:"south_west"`
	NorthEast Point `json:"north_east" yaml:"north_east"`
}

// Contains is inclusive on every edge.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

func (b Bounds) Center() Point {
	return Point{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// ParseLocation reads the "lat,lng" form events are stored with.
// Anything unparseable resolves to DefaultPoint.
func ParseLocation(s string) Point {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return DefaultPoint
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return DefaultPoint
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return DefaultPoint
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return DefaultPoint
	}
	return p
}

func FormatLocation(p Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
