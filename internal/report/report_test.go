package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/kma"
)

func TestRenderEntry(t *testing.T) {
	tests := []struct {
		category string
		value    string
		want     Entry
	}{
		{"PTY", "1", Entry{"PTY", "precipitation type", "rain"}},
		{"PTY", "9", Entry{"PTY", "precipitation type", "9"}},
		{"SKY", "4", Entry{"SKY", "sky condition", "cloudy"}},
		{"VEC", "270", Entry{"VEC", "wind direction", "W"}},
		{"VEC", "calm", Entry{"VEC", "wind direction", "calm"}},
		{"VEC", "NaN", Entry{"VEC", "wind direction", "NaN"}},
		{"TMP", "21", Entry{"TMP", "1-hour temperature", "21℃"}},
		{"REH", "60", Entry{"REH", "humidity", "60%"}},
		{"ZZZ", "7", Entry{"ZZZ", "ZZZ", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.category+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderEntry(tt.category, tt.value))
		})
	}
}

func TestObservations_LaterDuplicateOverwritesInPlace(t *testing.T) {
	items := []kma.Item{
		{Category: "T1H", ObsrValue: "10"},
		{Category: "REH", ObsrValue: "40"},
		{Category: "T1H", ObsrValue: "11"},
	}

	got := Observations(items)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{"T1H", "temperature", "11℃"}, got[0])
	assert.Equal(t, Entry{"REH", "humidity", "40%"}, got[1])
}

func TestForecast_GroupsBySlotInOrder(t *testing.T) {
	items := []kma.Item{
		{Category: "TMP", FcstDate: "20250315", FcstTime: "1100", FcstValue: "14"},
		{Category: "SKY", FcstDate: "20250315", FcstTime: "1100", FcstValue: "1"},
		{Category: "TMP", FcstDate: "20250315", FcstTime: "1200", FcstValue: "15"},
		{Category: "TMP", FcstDate: "20250315", FcstTime: "1100", FcstValue: "99"},
		{Category: "PTY", FcstDate: "20250315", FcstTime: "1200", FcstValue: "3"},
	}

	got := Forecast(items)
	require.Len(t, got, 2)

	assert.Equal(t, "1100", got[0].Time)
	assert.Equal(t, []Entry{
		{"TMP", "1-hour temperature", "14℃"},
		{"SKY", "sky condition", "clear"},
	}, got[0].Entries)

	assert.Equal(t, "1200", got[1].Time)
	assert.Equal(t, []Entry{
		{"TMP", "1-hour temperature", "15℃"},
		{"PTY", "precipitation type", "snow"},
	}, got[1].Entries)
}

func header(kind basetime.Kind) Header {
	return Header{
		Kind:       kind,
		Coordinate: grid.Coordinate{Latitude: 37.5665, Longitude: 126.978},
		BaseTime:   basetime.BaseTime{Date: "20250315", Time: "0900"},
	}
}

func TestObservationText(t *testing.T) {
	text := ObservationText(header(basetime.UltraShortNowcast), []Entry{
		{"T1H", "temperature", "12℃"},
		{"VEC", "wind direction", "NE"},
	})

	assert.Equal(t, "=== Ultra-short nowcast (lat: 37.5665, lon: 126.9780) ===\n"+
		"Issued: 20250315 0900\n\n"+
		"temperature: 12℃\n"+
		"wind direction: NE\n", text)
}

func TestForecastText(t *testing.T) {
	text := ForecastText(header(basetime.ShortTermForecast), []Slot{
		{Date: "20250315", Time: "1100", Entries: []Entry{{"SKY", "sky condition", "clear"}}},
	})

	assert.Equal(t, "=== Short-term forecast (lat: 37.5665, lon: 126.9780) ===\n"+
		"Issued: 20250315 0900\n\n"+
		"[20250315 1100]\n"+
		"  sky condition: clear\n\n", text)
}

func TestCityText(t *testing.T) {
	items := []kma.Item{
		{Category: "T1H", ObsrValue: "12.3"},
		{Category: "RN1", ObsrValue: "0"},
		{Category: "REH", ObsrValue: "55"},
		{Category: "WSD", ObsrValue: "2.1"},
		{Category: "PTY", ObsrValue: "4"},
		{Category: "VEC", ObsrValue: "90"},
	}

	text := CityText("서울", basetime.BaseTime{Date: "20250315", Time: "0900"}, items)

	assert.Equal(t, "📍 서울 current weather (base: 03/15 09:00)\n\n"+
		"🌡️ Temperature: 12.3°C\n"+
		"🌧️ 1-hour precipitation: none\n"+
		"💧 Humidity: 55%\n"+
		"💨 Wind speed: 2.1m/s\n"+
		"☔ Precipitation type: shower\n", text)
}

func TestCityText_RainfallAndMissing(t *testing.T) {
	text := CityText("부산", basetime.BaseTime{Date: "20250315", Time: "1000"}, []kma.Item{
		{Category: "RN1", ObsrValue: "3.5"},
	})
	assert.Contains(t, text, "1-hour precipitation: 3.5mm")
	assert.NotContains(t, text, "Temperature")

	text = CityText("부산", basetime.BaseTime{Date: "20250315", Time: "1000"}, []kma.Item{
		{Category: "RN1", ObsrValue: "강수없음"},
	})
	assert.Contains(t, text, "1-hour precipitation: none")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Ultra-short forecast", Title(basetime.UltraShortForecast))
	assert.Equal(t, "kind(7)", Title(basetime.Kind(7)))
}
