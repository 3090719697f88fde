// Package basetime resolves the issuance timestamp (base_date/base_time) to
// query for each KMA forecast product, given the caller's current instant.
//
// Every function here is pure: the instant is always passed in and is
// interpreted in its own location, so callers are expected to convert to
// KST before resolving.
package basetime

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "20060102"
	TimeLayout = "1504"

	// CityNowcastCutoff is the minute before which the city shortcut still
	// queries the previous hour's observation.
	CityNowcastCutoff = 40

	// alwaysStepBack is a cutoff no minute can reach.
	alwaysStepBack = 60

	ultraShortCutoff   = 45
	ultraShortMinute   = 30
	shortTermAvailable = 10
)

// shortTermHours are the daily issuance hours of the short-term forecast.
var shortTermHours = [...]int{2, 5, 8, 11, 14, 17, 20, 23}

var ErrUnknownKind = errors.New("unknown forecast kind")

// KST is the zone the provider publishes in. Korea observes no DST.
var KST = time.FixedZone("KST", 9*60*60)

// Kind selects which product's publishing rule applies.
type Kind int

const (
	UltraShortNowcast Kind = iota + 1
	UltraShortForecast
	ShortTermForecast
)

func (k Kind) String() string {
	switch k {
	case UltraShortNowcast:
		return "ultra-short-nowcast"
	case UltraShortForecast:
		return "ultra-short-forecast"
	case ShortTermForecast:
		return "short-term-forecast"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the names produced by String plus a few short aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ultra-short-nowcast", "nowcast":
		return UltraShortNowcast, nil
	case "ultra-short-forecast", "ultra-short":
		return UltraShortForecast, nil
	case "short-term-forecast", "short-term":
		return ShortTermForecast, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// BaseTime is the pair of query parameters identifying a product issuance.
type BaseTime struct {
	Date string `json:"base_date"`
	Time string `json:"base_time"`
}

func (b BaseTime) String() string {
	return b.Date + " " + b.Time
}

func fromTime(t time.Time) BaseTime {
	return BaseTime{Date: t.Format(DateLayout), Time: t.Format(TimeLayout)}
}

// Resolve returns the base time to query for kind at instant now.
func Resolve(kind Kind, now time.Time) (BaseTime, error) {
	switch kind {
	case UltraShortNowcast:
		return Nowcast(now), nil
	case UltraShortForecast:
		return UltraShort(now), nil
	case ShortTermForecast:
		return ShortTerm(now), nil
	default:
		return BaseTime{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// Nowcast always steps back one full hour from the current hour.
func Nowcast(now time.Time) BaseTime {
	return NowcastWithCutoff(now, alwaysStepBack)
}

// CityNowcast steps back one hour only while minute < CityNowcastCutoff.
//
// The city lookup has always used this looser rule while the coordinate
// lookup steps back unconditionally. Which one the provider intends is still
// open, so both entry points exist.
func CityNowcast(now time.Time) BaseTime {
	return NowcastWithCutoff(now, CityNowcastCutoff)
}

// NowcastWithCutoff truncates now to the hour and steps back one hour when
// now's minute is below cutoffMinute. A cutoff of 60 or more always steps
// back; a cutoff of 0 never does.
func NowcastWithCutoff(now time.Time, cutoffMinute int) BaseTime {
	t := truncateToHour(now)
	if now.Minute() < cutoffMinute {
		t = t.Add(-time.Hour)
	}
	return fromTime(t)
}

// UltraShort resolves the hourly :30 issuance, keeping a 15 minute margin for
// publication lag.
func UltraShort(now time.Time) BaseTime {
	t := truncateToHour(now)
	if now.Minute() < ultraShortCutoff {
		t = t.Add(-time.Hour)
	}
	return fromTime(t.Add(ultraShortMinute * time.Minute))
}

// ShortTerm resolves the latest of the eight daily issuances that has been
// available for at least ten minutes, falling back to 23:00 of the previous
// day before 02:10.
func ShortTerm(now time.Time) BaseTime {
	hour, minute := now.Hour(), now.Minute()

	base := -1
	for _, h := range shortTermHours {
		if hour > h || (hour == h && minute >= shortTermAvailable) {
			base = h
		}
	}

	y, m, d := now.Date()
	if base < 0 {
		// AddDate on the date itself handles month and year rollover.
		prev := time.Date(y, m, d, 23, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
		return fromTime(prev)
	}
	return fromTime(time.Date(y, m, d, base, 0, 0, 0, now.Location()))
}

func truncateToHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}
