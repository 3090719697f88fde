package grid

import (
	"errors"
	"fmt"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0

	koreaMinLatitude  = 33.0
	koreaMaxLatitude  = 43.0
	koreaMinLongitude = 124.0
	koreaMaxLongitude = 132.0
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a validated WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < minLatitude || lat > maxLatitude {
		return Coordinate{}, fmt.Errorf("%w: latitude must be between %.1f and %.1f, got %.4f",
			ErrInvalidCoordinate, minLatitude, maxLatitude, lat)
	}
	if lon < minLongitude || lon > maxLongitude {
		return Coordinate{}, fmt.Errorf("%w: longitude must be between %.1f and %.1f, got %.4f",
			ErrInvalidCoordinate, minLongitude, maxLongitude, lon)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// IsInKorea reports whether the coordinate falls inside a rough bounding
// box around the Korean peninsula. It is not an authoritative border test.
func (c Coordinate) IsInKorea() bool {
	return c.Latitude >= koreaMinLatitude && c.Latitude <= koreaMaxLatitude &&
		c.Longitude >= koreaMinLongitude && c.Longitude <= koreaMaxLongitude
}

func (c Coordinate) Grid() Point {
	return project(c.Latitude, c.Longitude)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("lat: %.4f, lon: %.4f", c.Latitude, c.Longitude)
}
