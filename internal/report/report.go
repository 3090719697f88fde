// Package report turns KMA items into labelled entries and plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/codes"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/kma"
)

// Entry is one rendered element.
type Entry struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Value    string `json:"value"`
}

// Slot groups the entries forecast for one target date and time.
type Slot struct {
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Entries []Entry `json:"entries"`
}

// Header identifies what a text report is about.
type Header struct {
	Kind       basetime.Kind
	Coordinate grid.Coordinate
	BaseTime   basetime.BaseTime
}

func Title(kind basetime.Kind) string {
	switch kind {
	case basetime.UltraShortNowcast:
		return "Ultra-short nowcast"
	case basetime.UltraShortForecast:
		return "Ultra-short forecast"
	case basetime.ShortTermForecast:
		return "Short-term forecast"
	default:
		return kind.String()
	}
}

// RenderEntry labels a raw category/value pair. Coded categories are
// interpreted; an unparsable wind direction is shown as received.
func RenderEntry(category, value string) Entry {
	description, unit := codes.LookupCategory(category)
	e := Entry{Category: category, Label: description}

	switch category {
	case "PTY":
		e.Value = codes.InterpretPrecipitation(value)
	case "SKY":
		e.Value = codes.InterpretSky(value)
	case "VEC":
		compass, err := codes.InterpretWindDirection(value)
		if err != nil {
			compass = value
		}
		e.Value = compass
	default:
		e.Value = value + unit
	}
	return e
}

// Observations renders nowcast items. A repeated category keeps its first
// position and takes the latest value.
func Observations(items []kma.Item) []Entry {
	entries := make([]Entry, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		e := RenderEntry(item.Category, item.Value())
		if i, ok := index[e.Label]; ok {
			entries[i] = e
			continue
		}
		index[e.Label] = len(entries)
		entries = append(entries, e)
	}
	return entries
}

// Forecast groups forecast items by target date and time, in the order the
// provider returned them. The first value for a category within a slot wins.
func Forecast(items []kma.Item) []Slot {
	var slots []Slot
	slotIndex := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, item := range items {
		key := item.FcstDate + " " + item.FcstTime
		i, ok := slotIndex[key]
		if !ok {
			i = len(slots)
			slotIndex[key] = i
			seen[key] = make(map[string]bool)
			slots = append(slots, Slot{Date: item.FcstDate, Time: item.FcstTime})
		}
		if seen[key][item.Category] {
			continue
		}
		seen[key][item.Category] = true
		slots[i].Entries = append(slots[i].Entries, RenderEntry(item.Category, item.Value()))
	}
	return slots
}

func writeHeader(b *strings.Builder, h Header) {
	fmt.Fprintf(b, "=== %s (lat: %.4f, lon: %.4f) ===\n", Title(h.Kind), h.Coordinate.Latitude, h.Coordinate.Longitude)
	fmt.Fprintf(b, "Issued: %s %s\n\n", h.BaseTime.Date, h.BaseTime.Time)
}

func ObservationText(h Header, entries []Entry) string {
	var b strings.Builder
	writeHeader(&b, h)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s\n", e.Label, e.Value)
	}
	return b.String()
}

func ForecastText(h Header, slots []Slot) string {
	var b strings.Builder
	writeHeader(&b, h)
	for _, s := range slots {
		fmt.Fprintf(&b, "[%s %s]\n", s.Date, s.Time)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "  %s: %s\n", e.Label, e.Value)
		}
		b.WriteString("\n")
	}
	return b.String()
}
