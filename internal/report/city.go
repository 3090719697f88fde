package report

import (
	"fmt"
	"strings"

	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/codes"
	"github.com/vzahanych/kma-weather/internal/kma"
)

// noRainfall are the RN1 values the provider uses for "no precipitation".
var noRainfall = map[string]bool{"0": true, "강수없음": true}

// CityText renders the compact glyph summary used by the city lookup.
// Categories that are absent from items are left out.
func CityText(city string, bt basetime.BaseTime, items []kma.Item) string {
	values := make(map[string]string, len(items))
	for _, item := range items {
		values[item.Category] = item.Value()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 %s current weather (base: %s)\n\n", city, formatBase(bt))

	if v, ok := values["T1H"]; ok {
		fmt.Fprintf(&b, "🌡️ Temperature: %s°C\n", v)
	}
	if v, ok := values["RN1"]; ok {
		rain := v + "mm"
		if noRainfall[v] {
			rain = codes.PrecipitationNone.Description
		}
		fmt.Fprintf(&b, "🌧️ 1-hour precipitation: %s\n", rain)
	}
	if v, ok := values["REH"]; ok {
		fmt.Fprintf(&b, "💧 Humidity: %s%%\n", v)
	}
	if v, ok := values["WSD"]; ok {
		fmt.Fprintf(&b, "💨 Wind speed: %sm/s\n", v)
	}
	if v, ok := values["PTY"]; ok {
		fmt.Fprintf(&b, "☔ Precipitation type: %s\n", codes.InterpretPrecipitation(v))
	}

	return b.String()
}

// formatBase renders 20250315/0900 as 03/15 09:00.
func formatBase(bt basetime.BaseTime) string {
	if len(bt.Date) != 8 || len(bt.Time) != 4 {
		return bt.String()
	}
	return fmt.Sprintf("%s/%s %s:%s", bt.Date[4:6], bt.Date[6:8], bt.Time[:2], bt.Time[2:])
}
