package geo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Area describes the neighborhood the map is locked to. Creation bounds
// restrict where new content may be placed; navigation bounds are a little
// wider and limit panning.
type Area struct {
	Name       string `json:"name" yaml:"name"`
	Creation   Bounds `json:"creation_bounds" yaml:"creation_bounds"`
	Navigation Bounds `json:"navigation_bounds" yaml:"navigation_bounds"`
	Zoom       int    `json:"zoom" yaml:"zoom"`
}

// DefaultArea is Cité Aliou Sow, Dakar.
func DefaultArea() Area {
	return Area{
		Name: "Cité Aliou Sow",
		Creation: Bounds{
			SouthWest: Point{Lat: 14.766540, Lng: -17.416938},
			NorthEast: Point{Lat: 14.775257, Lng: -17.408352},
		},
		Navigation: Bounds{
			SouthWest: Point{Lat: 14.762540, Lng: -17.420938},
			NorthEast: Point{Lat: 14.779257, Lng: -17.404352},
		},
		Zoom: 17,
	}
}

func (a Area) Center() Point {
	return a.Creation.Center()
}

// CheckCreation returns ErrOutOfBounds when p may not receive new content.
func (a Area) CheckCreation(p Point) error {
	if !a.Creation.Contains(p) {
		return ErrOutOfBounds
	}
	return nil
}

func (a Area) Validate() error {
	if !a.Creation.SouthWest.Valid() || !a.Creation.NorthEast.Valid() {
		return fmt.Errorf("area %q: invalid creation bounds", a.Name)
	}
	if a.Creation.SouthWest.Lat >= a.Creation.NorthEast.Lat || a.Creation.SouthWest.Lng >= a.Creation.NorthEast.Lng {
		return fmt.Errorf("area %q: creation south-west corner must be below and left of north-east", a.Name)
	}
	if !a.Navigation.Contains(a.Creation.SouthWest) || !a.Navigation.Contains(a.Creation.NorthEast) {
		return fmt.Errorf("area %q: navigation bounds must enclose creation bounds", a.Name)
	}
	return nil
}

// LoadArea reads an area from a YAML file. An empty path returns DefaultArea.
// Fields missing from the file keep their default values.
func LoadArea(path string) (Area, error) {
	area := DefaultArea()
	if path == "" {
		return area, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Area{}, fmt.Errorf("read area config: %w", err)
	}
	if err := yaml.Unmarshal(data, &area); err != nil {
		return Area{}, fmt.Errorf("parse area config: %w", err)
	}
	if err := area.Validate(); err != nil {
		return Area{}, err
	}
	return area, nil
}
