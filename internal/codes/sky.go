// Package codes interprets the coded values returned by the KMA forecast
// API: sky condition, precipitation type, wind direction and the element
// categories with their units.
//
// Sky, precipitation and category lookups pass unknown codes through
// unchanged so that values newly introduced upstream still render. Wind
// direction is numeric and fails with an error instead.
package codes

// SkyCondition is a closed set of SKY codes.
type SkyCondition struct {
	Code        string
	Description string
	Glyph       string
}

var (
	SkyClear        = SkyCondition{Code: "1", Description: "clear", Glyph: "☀️"}
	SkyPartlyCloudy = SkyCondition{Code: "3", Description: "partly cloudy", Glyph: "⛅"}
	SkyCloudy       = SkyCondition{Code: "4", Description: "cloudy", Glyph: "☁️"}
)

var skyConditions = []SkyCondition{SkyClear, SkyPartlyCloudy, SkyCloudy}

// SkyFromCode returns the SKY value for code, if known.
func SkyFromCode(code string) (SkyCondition, bool) {
	for _, s := range skyConditions {
		if s.Code == code {
			return s, true
		}
	}
	return SkyCondition{}, false
}

// InterpretSky returns the description for code, or code itself when the
// code is not known.
func InterpretSky(code string) string {
	s, ok := SkyFromCode(code)
	if !ok {
		return code
	}
	return s.Description
}

func (s SkyCondition) String() string {
	return s.Glyph + " " + s.Description
}
