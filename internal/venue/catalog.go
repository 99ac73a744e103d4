// Package venue holds the table of study locations and which of them need a
// floor selection.
package venue

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyCatalog is returned when a catalog file lists no venues.
	ErrEmptyCatalog = errors.New("venue: catalog is empty")
	// ErrDuplicateVenue is returned when two entries share a name.
	ErrDuplicateVenue = errors.New("venue: duplicate venue")
)

// Venue describes a single study location.
type Venue struct {
	Name          string   `yaml:"name" json:"name"`
	RequiresFloor bool     `yaml:"requires_floor" json:"requires_floor"`
	Floors        []string `yaml:"floors" json:"floors,omitempty"`
}

// OffersFloor reports whether floor is one of the venue's floors. Venues
// that require a floor but list none accept any non-empty value.
func (v Venue) OffersFloor(floor string) bool {
	floor = strings.TrimSpace(floor)
	if floor == "" {
		return false
	}
	if len(v.Floors) == 0 {
		return v.RequiresFloor
	}
	for _, candidate := range v.Floors {
		if strings.EqualFold(candidate, floor) {
			return true
		}
	}
	return false
}

// Catalog is an ordered, immutable set of venues.
type Catalog struct {
	venues []Venue
	byName map[string]int
}

type catalogFile struct {
	Venues []Venue `yaml:"venues"`
}

// Default returns the built-in venue list.
func Default() *Catalog {
	catalog, err := New([]Venue{
		{Name: "Home"},
		{Name: "Al Basiirah Mosque"},
		{Name: "Al Hijaaz Mosque"},
		{Name: "Masjid Abii Bakar", RequiresFloor: true, Floors: []string{"3rd Floor", "5th Floor", "6th Floor", "Rooftop"}},
		{Name: "Al Hidaayah Mosque"},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}

// New builds a catalog from venues. Names are matched case-insensitively.
func New(venues []Venue) (*Catalog, error) {
	if len(venues) == 0 {
		return nil, ErrEmptyCatalog
	}
	catalog := &Catalog{
		venues: make([]Venue, 0, len(venues)),
		byName: make(map[string]int, len(venues)),
	}
	for _, v := range venues {
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" {
			return nil, fmt.Errorf("venue: entry %d has no name", len(catalog.venues)+1)
		}
		key := strings.ToLower(v.Name)
		if _, exists := catalog.byName[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVenue, v.Name)
		}
		if len(v.Floors) > 0 {
			v.RequiresFloor = true
			v.Floors = append([]string(nil), v.Floors...)
		}
		catalog.byName[key] = len(catalog.venues)
		catalog.venues = append(catalog.venues, v)
	}
	return catalog, nil
}

// Parse decodes a YAML document of the form `venues: [{name, requires_floor, floors}]`.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("venue: parse yaml: %w", err)
	}
	return New(file.Venues)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("venue: read catalog: %w", err)
	}
	return Parse(data)
}

// Lookup finds a venue by name.
func (c *Catalog) Lookup(name string) (Venue, bool) {
	if c == nil {
		return Venue{}, false
	}
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Venue{}, false
	}
	return c.venues[idx], true
}

// RequiresFloor reports whether the named venue needs a floor. Unknown venues do not.
func (c *Catalog) RequiresFloor(name string) bool {
	v, ok := c.Lookup(name)
	return ok && v.RequiresFloor
}

// All returns a copy of the venues in catalog order.
func (c *Catalog) All() []Venue {
	if c == nil {
		return nil
	}
	out := make([]Venue, len(c.venues))
	for i, v := range c.venues {
		v.Floors = append([]string(nil), v.Floors...)
		out[i] = v
	}
	return out
}
