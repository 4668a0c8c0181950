package models

import "time"

const TripDateLayout = "02/01/2006 15:04"

// Trip is a completed ride in the session history. Records are never modified.
type Trip struct {
	ID              string    `json:"id"`
	DriverID        string    `json:"driver_id"`
	Driver          string    `json:"driver"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DistanceKm      float64   `json:"distance_km"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
}

func (t Trip) FormattedDate() string {
	return t.CompletedAt.Format(TripDateLayout)
}

// TripDurationMinutes is the simulated ride time for a distance in km.
func TripDurationMinutes(distanceKm float64) int {
	return int(distanceKm * 3)
}
