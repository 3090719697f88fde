package codes

// Category describes one forecast element code.
type Category struct {
	Code        string
	Description string
	Unit        string
}

const unitCode = "code"

var categories = map[string]Category{
	// short-term forecast
	"POP": {Code: "POP", Description: "precipitation probability", Unit: "%"},
	"PTY": {Code: "PTY", Description: "precipitation type", Unit: unitCode},
	"PCP": {Code: "PCP", Description: "1-hour precipitation", Unit: "mm"},
	"REH": {Code: "REH", Description: "humidity", Unit: "%"},
	"SNO": {Code: "SNO", Description: "1-hour new snowfall", Unit: "cm"},
	"SKY": {Code: "SKY", Description: "sky condition", Unit: unitCode},
	"TMP": {Code: "TMP", Description: "1-hour temperature", Unit: "℃"},
	"TMN": {Code: "TMN", Description: "daily minimum temperature", Unit: "℃"},
	"TMX": {Code: "TMX", Description: "daily maximum temperature", Unit: "℃"},
	"UUU": {Code: "UUU", Description: "wind speed (east-west)", Unit: "m/s"},
	"VVV": {Code: "VVV", Description: "wind speed (north-south)", Unit: "m/s"},
	"WAV": {Code: "WAV", Description: "wave height", Unit: "M"},
	"VEC": {Code: "VEC", Description: "wind direction", Unit: "deg"},
	"WSD": {Code: "WSD", Description: "wind speed", Unit: "m/s"},

	// ultra-short nowcast
	"T1H": {Code: "T1H", Description: "temperature", Unit: "℃"},
	"RN1": {Code: "RN1", Description: "1-hour precipitation", Unit: "mm"},

	// ultra-short forecast
	"LGT": {Code: "LGT", Description: "lightning", Unit: "kA"},
}

// CategoryFor returns the table entry for code, if known.
func CategoryFor(code string) (Category, bool) {
	c, ok := categories[code]
	return c, ok
}

// LookupCategory returns the description and unit of code. Unknown codes
// come back as (code, "").
func LookupCategory(code string) (description, unit string) {
	c, ok := categories[code]
	if !ok {
		return code, ""
	}
	return c.Description, c.Unit
}

// IsCoded reports whether the category's value is itself a code that needs
// interpreting rather than a measurement.
func (c Category) IsCoded() bool {
	return c.Unit == unitCode
}
