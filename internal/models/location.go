package models

import "strings"

// Place is a raw geocoding candidate.
type Place struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

// Location is a place the user picked as origin or destination.
type Location struct {
	Name     string  `json:"name"`
	FullName string  `json:"full_name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Label is the first three comma separated segments of the display name.
func (p Place) Label() string {
	parts := strings.Split(p.DisplayName, ",")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

func (p Place) Location() Location {
	name, _, _ := strings.Cut(p.DisplayName, ",")
	return Location{
		Name:     name,
		FullName: p.DisplayName,
		Lat:      p.Lat,
		Lon:      p.Lon,
	}
}
