package codes

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	compassSector = 22.5
	compassOffset = compassSector / 2
)

var (
	ErrInvalidWindDirection    = errors.New("invalid wind direction")
	ErrWindDirectionOutOfRange = errors.New("wind direction out of range")
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

var koreanPoints = [16]string{
	"북", "북북동", "북동", "동북동",
	"동", "동남동", "남동", "남남동",
	"남", "남남서", "남서", "서남서",
	"서", "서북서", "북서", "북북서",
}

// WindDirection is a bearing in degrees within [0, 360).
type WindDirection struct {
	degree float64
}

// NewWindDirection accepts bearings in [0, 360); NaN is out of range.
func NewWindDirection(degree float64) (WindDirection, error) {
	if math.IsNaN(degree) || degree < 0 || degree >= 360 {
		return WindDirection{}, fmt.Errorf("%w: must be in [0, 360), got %.2f", ErrWindDirectionOutOfRange, degree)
	}
	return WindDirection{degree: degree}, nil
}

func ParseWindDirection(s string) (WindDirection, error) {
	degree, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return WindDirection{}, fmt.Errorf("%w %q: %w", ErrInvalidWindDirection, s, err)
	}
	return NewWindDirection(degree)
}

func (w WindDirection) Degree() float64 {
	return w.degree
}

// sector is 0 for north, counting clockwise in 22.5° steps.
func (w WindDirection) sector() int {
	return int((w.degree+compassOffset)/compassSector) % len(compassPoints)
}

func (w WindDirection) Compass() string {
	return compassPoints[w.sector()]
}

func (w WindDirection) Korean() string {
	return koreanPoints[w.sector()]
}

func (w WindDirection) String() string {
	return fmt.Sprintf("%.1f° (%s)", w.degree, w.Compass())
}

// InterpretWindDirection converts a degree string to its 16-point compass
// label. Unlike the other lookups it never passes input through: non-numeric
// input fails with ErrInvalidWindDirection and out of range values with
// ErrWindDirectionOutOfRange.
func InterpretWindDirection(degree string) (string, error) {
	w, err := ParseWindDirection(degree)
	if err != nil {
		return "", err
	}
	return w.Compass(), nil
}
