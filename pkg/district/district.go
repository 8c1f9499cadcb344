// Package district defines the static city-district registry: each district
// has a geographic anchor, an influence radius, display names, and the
// generative-audio prompt that represents its sound.
//
// The registry is loaded once at startup from YAML and is immutable at
// runtime.
package district

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/skytonelabs/skytone/pkg/geo"
)

// District is one immutable registry entry.
type District struct {
	// ID is the stable key used in weight vectors and indicator events.
	ID string `yaml:"id"`

	// Name is the default display name.
	Name string `yaml:"name"`

	// Names maps locale codes (e.g. "ja", "de") to localized display
	// names. Missing locales fall back to Name.
	Names map[string]string `yaml:"names,omitempty"`

	// Description is free-form descriptive copy for UI collaborators.
	Description string `yaml:"description,omitempty"`

	// Anchor is the geographic center of the district's influence.
	Anchor geo.LatLng `yaml:"anchor"`

	// Radius is the influence radius in meters. Weight is zero at and
	// beyond this distance.
	Radius float64 `yaml:"radius"`

	// Color is a UI color token (hex string).
	Color string `yaml:"color,omitempty"`

	// Prompt is the generative-audio prompt representing this district.
	Prompt string `yaml:"prompt"`
}

// NameFor returns the display name for a locale, falling back to the
// default name when no localized form exists.
func (d *District) NameFor(locale string) string {
	if n, ok := d.Names[locale]; ok && n != "" {
		return n
	}
	return d.Name
}

// Registry is an ordered, immutable set of districts. Order is the
// file order and is used as the deterministic tie-break everywhere
// districts compete.
type Registry struct {
	districts []District
	byID      map[string]int
}

// NewRegistry builds a registry from districts, validating each entry.
func NewRegistry(districts []District) (*Registry, error) {
	byID := make(map[string]int, len(districts))
	for i, d := range districts {
		if d.ID == "" {
			return nil, fmt.Errorf("district: entry %d has empty id", i)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("district: duplicate id %q", d.ID)
		}
		if d.Radius <= 0 {
			return nil, fmt.Errorf("district %q: radius must be positive, got %v", d.ID, d.Radius)
		}
		if d.Anchor.Lat < -90 || d.Anchor.Lat > 90 || d.Anchor.Lng < -180 || d.Anchor.Lng > 180 {
			return nil, fmt.Errorf("district %q: anchor out of range: %+v", d.ID, d.Anchor)
		}
		if d.Prompt == "" {
			return nil, fmt.Errorf("district %q: prompt is required", d.ID)
		}
		byID[d.ID] = i
	}
	return &Registry{districts: districts, byID: byID}, nil
}

// Len returns the number of districts.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.districts)
}

// All returns the districts in registry order. The returned slice must
// not be mutated.
func (r *Registry) All() []District {
	if r == nil {
		return nil
	}
	return r.districts
}

// ByID returns the district with the given id, or nil.
func (r *Registry) ByID(id string) *District {
	if r == nil {
		return nil
	}
	i, ok := r.byID[id]
	if !ok {
		return nil
	}
	return &r.districts[i]
}

// Index returns the registry position of id, or -1.
func (r *Registry) Index(id string) int {
	if r == nil {
		return -1
	}
	i, ok := r.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Parse builds a registry from YAML of the form:
//
//	districts:
//	  - id: shibuya
//	    name: Shibuya
//	    anchor: {lat: 35.6595, lng: 139.7005}
//	    radius: 800
//	    prompt: "dense electronic city pop, neon arpeggios"
func Parse(data []byte) (*Registry, error) {
	var doc struct {
		Districts []District `yaml:"districts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("district: parse: %w", err)
	}
	return NewRegistry(doc.Districts)
}

// Load reads and parses a registry YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("district: read %s: %w", path, err)
	}
	return Parse(data)
}
