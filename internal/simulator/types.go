package simulator

import (
	"encoding/json"
	"fmt"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5

// BaseEvent is the common structure for all events
type BaseEvent struct {
	Timestamp int64  `json:"timestamp"`
	EventType string `json:"eventType"`
	TripID    string `json:"tripId,omitempty"`
	DriverID  string `json:"driverId,omitempty"`
}

// TripCompletedEvent is published once a trip has been added to the history
type TripCompletedEvent struct {
	BaseEvent
	Driver             string  `json:"driver"`
	City               string  `json:"city"`
	Origin             string  `json:"origin"`
	Destination        string  `json:"destination"`
	OriginGeohash      string  `json:"originGeohash"`
	DestinationGeohash string  `json:"destinationGeohash"`
	DistanceKm         float64 `json:"distanceKm"`
	Price              float64 `json:"price"`
	DurationMinutes    int     `json:"durationMinutes"`
}

// DriverRatedEvent carries the stars a rider gave after a trip
type DriverRatedEvent struct {
	BaseEvent
	Stars int `json:"stars"`
}

// EventMessage is a serialized event ready for an OutputDestination
type EventMessage struct {
	Topic   string
	Key     string
	Message []byte
}

func serializeEvent(topic, key string, event any) (EventMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return EventMessage{}, fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	return EventMessage{Topic: topic, Key: key, Message: data}, nil
}

func encodeGeohash(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, geohashPrecision)
}
