package simulator

import (
	"log"
	"strings"

	"github.com/chrisdamba/tripsim/internal/models"
	"github.com/lucsky/cuid"
)

func (s *Simulator) startTrip(driver *models.Driver, origin, destination models.Location, distance, price float64) error {
	s.screen()
	s.console.Println("Ride confirmed!")
	s.console.Println()
	s.console.Printf("Driver: %s\n", driver.Name)
	s.console.Printf("Vehicle: %s - %s\n", driver.Model, driver.Plate)
	s.console.Printf("Rating: %.1f\n\n", driver.Rating)

	s.console.Printf("Driver arriving in %d minutes...\n", driver.ArrivalMinutes())
	s.console.Ticks(s.Config.ArrivalTicks, s.Config.ArrivalTickInterval, "arriving")

	s.console.Println("\nDriver arrived! Starting trip...")
	s.console.Pause(s.Config.MessagePause)

	duration := models.TripDurationMinutes(distance)

	s.screen()
	s.console.Println("ON TRIP")
	s.console.Println()
	s.console.Printf("Origin: %s\n", origin.Name)
	s.console.Printf("Destination: %s\n\n", destination.Name)
	s.console.Ticks(s.Config.TripTicks, s.Config.TripTickInterval, "on the way")

	s.console.Println("\nTrip completed!")
	s.console.Printf("\nPrice: R$ %.2f\n", price)
	s.console.Printf("Distance: %.1f km\n", distance)
	s.console.Printf("Time: %d min\n", duration)

	trip := models.Trip{
		ID:              cuid.New(),
		DriverID:        driver.ID,
		Driver:          driver.Name,
		Origin:          origin.Name,
		Destination:     destination.Name,
		DistanceKm:      distance,
		Price:           price,
		DurationMinutes: duration,
		CompletedAt:     s.Clock(),
	}
	s.History = append(s.History, trip)
	s.metrics.TripCompleted(distance, len(s.History))
	log.Printf("Trip %s completed: %s -> %s with %s, %.1f km, R$ %.2f",
		trip.ID, trip.Origin, trip.Destination, trip.Driver, trip.DistanceKm, trip.Price)

	s.publish(models.TopicTripCompleted, encodeGeohash(origin.Lat, origin.Lon), TripCompletedEvent{
		BaseEvent: BaseEvent{
			Timestamp: trip.CompletedAt.UnixMilli(),
			EventType: models.TopicTripCompleted,
			TripID:    trip.ID,
			DriverID:  driver.ID,
		},
		Driver:             driver.Name,
		City:               s.City,
		Origin:             origin.Name,
		Destination:        destination.Name,
		OriginGeohash:      encodeGeohash(origin.Lat, origin.Lon),
		DestinationGeohash: encodeGeohash(destination.Lat, destination.Lon),
		DistanceKm:         distance,
		Price:              price,
		DurationMinutes:    duration,
	})

	if _, err := s.console.Prompt("\nPress Enter to rate the driver..."); err != nil {
		return err
	}
	return s.rateDriver(driver, trip.ID)
}

// rateDriver collects 1-5 stars. The rating is not stored on the driver or the trip.
func (s *Simulator) rateDriver(driver *models.Driver, tripID string) error {
	s.screen()
	s.console.Printf("Rating for %s\n\n", driver.Name)
	for i := 1; i <= 5; i++ {
		s.console.Printf("%d. %s\n", i, strings.Repeat("*", i))
	}

	input, err := s.console.Prompt("\nYour rating (1-5): ")
	if err != nil {
		return err
	}

	if stars, ok := parseRating(input); ok {
		s.console.Println("\nThanks for the rating!")
		s.metrics.DriverRated(stars)
		s.publish(models.TopicDriverRated, driver.ID, DriverRatedEvent{
			BaseEvent: BaseEvent{
				Timestamp: s.Clock().UnixMilli(),
				EventType: models.TopicDriverRated,
				TripID:    tripID,
				DriverID:  driver.ID,
			},
			Stars: stars,
		})
	} else {
		s.console.Println("\nInvalid rating")
	}
	s.console.Pause(s.Config.MessagePause)
	return nil
}

// ShowHistory lists completed trips in the order they happened.
func (s *Simulator) ShowHistory() error {
	s.screen()
	s.console.Println("PAST RIDES")
	s.console.Println()

	if len(s.History) == 0 {
		s.console.Println("No rides yet.")
		s.console.Println()
		_, err := s.console.Prompt("Press Enter to go back...")
		return err
	}

	for i, t := range s.History {
		s.console.Printf("%d. %s\n", i+1, t.FormattedDate())
		s.console.Printf("   Driver: %s\n", t.Driver)
		s.console.Printf("   Origin: %s\n", t.Origin)
		s.console.Printf("   Destination: %s\n", t.Destination)
		s.console.Printf("   Distance: %.1f km\n", t.DistanceKm)
		s.console.Printf("   Price: R$ %.2f\n\n", t.Price)
	}

	_, err := s.console.Prompt("Press Enter to go back...")
	return err
}
