// Package grid converts WGS84 coordinates to the KMA forecast grid using the
// agency's Lambert Conformal Conic parameters.
package grid

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371.00877
	gridSpacingKm = 5.0
	standardLat1  = 30.0
	standardLat2  = 60.0
	originLon     = 126.0
	originLat     = 38.0
	originX       = 210.0 / gridSpacingKm
	originY       = 675.0 / gridSpacingKm

	degToRad = math.Pi / 180.0
)

// Point is a cell of the KMA grid, used as the spatial key of every query.
type Point struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.NX, p.NY)
}

// lambert holds the cone parameters derived from the fixed constants.
type lambert struct {
	re   float64
	sn   float64
	sf   float64
	ro   float64
	olon float64
}

var cone = newLambert()

func newLambert() lambert {
	re := earthRadiusKm / gridSpacingKm
	slat1 := standardLat1 * degToRad
	slat2 := standardLat2 * degToRad
	olat := originLat * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)

	sf := math.Pow(math.Tan(math.Pi*0.25+slat1*0.5), sn) * math.Cos(slat1) / sn
	ro := re * sf / math.Pow(math.Tan(math.Pi*0.25+olat*0.5), sn)

	return lambert{re: re, sn: sn, sf: sf, ro: ro, olon: originLon * degToRad}
}

// Project validates lat/lon and returns the grid cell containing it. Any
// valid coordinate is accepted, but cells are only meaningful near the Korean
// grid; towards the south pole the values diverge and at -90 the cone radius
// is infinite, so the integers are undefined.
func Project(lat, lon float64) (Point, error) {
	c, err := NewCoordinate(lat, lon)
	if err != nil {
		return Point{}, err
	}
	return c.Grid(), nil
}

func project(lat, lon float64) Point {
	ra := cone.re * cone.sf / math.Pow(math.Tan(math.Pi*0.25+lat*degToRad*0.5), cone.sn)

	theta := lon*degToRad - cone.olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= cone.sn

	x := ra * math.Sin(theta)
	y := cone.ro - ra*math.Cos(theta)

	// The agency's reference code truncates after a +1.5 offset; int()
	// truncates toward zero which matches it.
	return Point{
		NX: int(x + originX + 1.5),
		NY: int(y + originY + 1.5),
	}
}
