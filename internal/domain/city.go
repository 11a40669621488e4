package domain

import (
	"strings"

	"github.com/prohmpiriya/venue-reservation/internal/geo"
)

// City is unique by (name, country), compared case-insensitively.
// Coordinates stay nil until geocoding succeeds.
type City struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (c *City) HasCoordinates() bool {
	return c != nil && c.Latitude != nil && c.Longitude != nil
}

// Coordinates implements geo.Locatable
func (c *City) Coordinates() (geo.Point, bool) {
	if !c.HasCoordinates() {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *c.Latitude, Lon: *c.Longitude}, true
}

// Label renders "Name, Country"
func (c *City) Label() string {
	return c.Name + ", " + c.Country
}

// CityKey is the normalized lookup key for a city
func CityKey(name, country string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(country))
}

// ParseCityLabel splits "Name, Country" on the first comma
func ParseCityLabel(label string) (name, country string, ok bool) {
	name, country, found := strings.Cut(label, ",")
	name, country = strings.TrimSpace(name), strings.TrimSpace(country)
	if !found || name == "" || country == "" {
		return "", "", false
	}
	return name, country, true
}
