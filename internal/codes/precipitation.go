package codes

// PrecipitationType is a closed set of PTY codes.
type PrecipitationType struct {
	Code        string
	Description string
	Glyph       string
}

var (
	PrecipitationNone      = PrecipitationType{Code: "0", Description: "none"}
	PrecipitationRain      = PrecipitationType{Code: "1", Description: "rain", Glyph: "🌧️"}
	PrecipitationRainSnow  = PrecipitationType{Code: "2", Description: "rain/snow", Glyph: "🌨️"}
	PrecipitationSnow      = PrecipitationType{Code: "3", Description: "snow", Glyph: "❄️"}
	PrecipitationShower    = PrecipitationType{Code: "4", Description: "shower", Glyph: "🌦️"}
	PrecipitationDrizzle   = PrecipitationType{Code: "5", Description: "drizzle", Glyph: "💧"}
	PrecipitationSleet     = PrecipitationType{Code: "6", Description: "sleet/drift", Glyph: "🌨️"}
	PrecipitationSnowDrift = PrecipitationType{Code: "7", Description: "snow drift", Glyph: "🌨️"}
)

var precipitationTypes = []PrecipitationType{
	PrecipitationNone,
	PrecipitationRain,
	PrecipitationRainSnow,
	PrecipitationSnow,
	PrecipitationShower,
	PrecipitationDrizzle,
	PrecipitationSleet,
	PrecipitationSnowDrift,
}

// PrecipitationFromCode returns the PTY value for code, if known.
func PrecipitationFromCode(code string) (PrecipitationType, bool) {
	for _, p := range precipitationTypes {
		if p.Code == code {
			return p, true
		}
	}
	return PrecipitationType{}, false
}

// InterpretPrecipitation returns the description for code, or code itself
// when the code is not known.
func InterpretPrecipitation(code string) string {
	p, ok := PrecipitationFromCode(code)
	if !ok {
		return code
	}
	return p.Description
}

func (p PrecipitationType) HasPrecipitation() bool {
	return p.Code != PrecipitationNone.Code
}

func (p PrecipitationType) String() string {
	if p.Glyph == "" {
		return p.Description
	}
	return p.Glyph + " " + p.Description
}
