package models

const (
	MenuRequestRide = "1"
	MenuHistory     = "2"
	MenuChangeCity  = "3"
	MenuExit        = "4"

	TopicTripCompleted = "trip.completed"
	TopicDriverRated   = "driver.rated"

	AbortNoOrigin      = "no_origin"
	AbortNoDestination = "no_destination"
	AbortTooClose      = "too_close"
	AbortNoDriver      = "no_driver"
)
