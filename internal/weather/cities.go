package weather

import (
	"sort"
	"strings"

	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/grid"
)

// City is a named shortcut to a grid cell. The cells are the agency's
// published values, which can differ by one from projecting the city hall
// coordinates (Jeju is 52,38 here but projects to 53,38).
type City struct {
	Name    string     `json:"name"`
	Aliases []string   `json:"aliases,omitempty"`
	Grid    grid.Point `json:"grid"`
}

var defaultCities = []City{
	{Name: "서울", Aliases: []string{"seoul"}, Grid: grid.Point{NX: 60, NY: 127}},
	{Name: "부산", Aliases: []string{"busan"}, Grid: grid.Point{NX: 98, NY: 76}},
	{Name: "대구", Aliases: []string{"daegu"}, Grid: grid.Point{NX: 89, NY: 91}},
	{Name: "인천", Aliases: []string{"incheon"}, Grid: grid.Point{NX: 55, NY: 124}},
	{Name: "광주", Aliases: []string{"gwangju"}, Grid: grid.Point{NX: 58, NY: 74}},
	{Name: "대전", Aliases: []string{"daejeon"}, Grid: grid.Point{NX: 67, NY: 100}},
	{Name: "울산", Aliases: []string{"ulsan"}, Grid: grid.Point{NX: 102, NY: 84}},
	{Name: "세종", Aliases: []string{"sejong"}, Grid: grid.Point{NX: 66, NY: 103}},
	{Name: "제주", Aliases: []string{"jeju"}, Grid: grid.Point{NX: 52, NY: 38}},
}

// Cities is an immutable lookup table built once at start-up.
type Cities struct {
	list  []City
	index map[string]int
}

// NewCities returns the built-in table with overrides applied. An override
// whose name matches a known city or alias replaces its grid cell; other
// overrides are appended in name order.
func NewCities(overrides map[string]config.CityConfig) *Cities {
	c := &Cities{
		list:  make([]City, len(defaultCities)),
		index: make(map[string]int),
	}
	copy(c.list, defaultCities)
	for i, city := range c.list {
		c.addKeys(i, city)
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		o := overrides[name]
		p := grid.Point{NX: o.NX, NY: o.NY}
		if i, ok := c.index[normalizeCity(name)]; ok {
			c.list[i].Grid = p
			continue
		}
		city := City{Name: strings.TrimSpace(name), Grid: p}
		c.list = append(c.list, city)
		c.addKeys(len(c.list)-1, city)
	}

	return c
}

func (c *Cities) addKeys(i int, city City) {
	c.index[normalizeCity(city.Name)] = i
	for _, a := range city.Aliases {
		c.index[normalizeCity(a)] = i
	}
}

func normalizeCity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Cities) Lookup(name string) (City, bool) {
	i, ok := c.index[normalizeCity(name)]
	if !ok {
		return City{}, false
	}
	return c.list[i], true
}

func (c *Cities) Names() []string {
	names := make([]string, len(c.list))
	for i, city := range c.list {
		names[i] = city.Name
	}
	return names
}

func (c *Cities) All() []City {
	out := make([]City, len(c.list))
	copy(out, c.list)
	return out
}
