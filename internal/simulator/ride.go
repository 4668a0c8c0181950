package simulator

import (
	"context"
	"fmt"
	"log"

	"github.com/chrisdamba/tripsim/internal/models"
)

// RequestRide runs the ride flow: origin, destination, driver choice and the trip itself.
// Any step without a selection returns to the menu.
func (s *Simulator) RequestRide(ctx context.Context) error {
	s.metrics.RideRequested()

	s.screen()
	s.console.Println("NEW RIDE")
	s.console.Println()
	s.console.Println("Pickup location")
	origin, err := s.resolveLocation(ctx, "Enter the pickup address: ")
	if err != nil {
		return err
	}
	if origin == nil {
		s.metrics.RideAborted(models.AbortNoOrigin)
		return nil
	}

	s.screen()
	s.console.Printf("Selected origin: %s\n\n", origin.Name)
	s.console.Println("Destination")
	destination, err := s.resolveLocation(ctx, "Enter the destination address: ")
	if err != nil {
		return err
	}
	if destination == nil {
		s.metrics.RideAborted(models.AbortNoDestination)
		return nil
	}

	distance := calculateDistance(*origin, *destination)
	if distance < s.Config.MinTripDistance {
		s.console.Println("\nDistance too short. Walk instead.")
		s.console.Pause(s.Config.WalkPause)
		s.metrics.RideAborted(models.AbortTooClose)
		return nil
	}

	s.console.Println("\nLooking for drivers...")
	s.console.Pause(s.Config.MessagePause)

	available := s.sampleDrivers()

	s.screen()
	s.console.Printf("Origin: %s\n", origin.Name)
	s.console.Printf("Destination: %s\n", destination.Name)
	s.console.Printf("Distance: %.1f km\n\n", distance)
	s.console.Println("Available drivers:")
	s.console.Println()
	for i, d := range available {
		price := s.quotePrice(distance)
		s.console.Printf("%d. %s\n", i+1, d.Name)
		s.console.Printf("   %s - %s\n", d.Model, d.Plate)
		s.console.Printf("   Rating: %.1f\n", d.Rating)
		s.console.Printf("   Distance: %.1f km | Arrival: %d min\n", d.Distance, d.ArrivalMinutes())
		s.console.Printf("   Price: R$ %.2f\n\n", price)
	}
	s.console.Println("0. Back")

	choice, err := s.console.Prompt("\nChoose a driver: ")
	if err != nil {
		return err
	}
	n, ok := parseChoice(choice, len(available))
	if !ok {
		s.metrics.RideAborted(models.AbortNoDriver)
		return nil
	}

	driver := available[n-1]
	// the charged price is a new draw, not the quote shown above
	price := s.quotePrice(distance)
	return s.startTrip(driver, *origin, *destination, distance, price)
}

// resolveLocation asks for an address until the user picks a match, gives up,
// or the lookup finds nothing. A nil location means no selection.
func (s *Simulator) resolveLocation(ctx context.Context, prompt string) (*models.Location, error) {
	for {
		address, err := s.console.Prompt(prompt)
		if err != nil {
			return nil, err
		}
		if address == "" {
			return nil, nil
		}

		s.console.Println("\nSearching locations...")
		places := s.searchPlaces(ctx, address)
		if len(places) == 0 {
			s.console.Println("No location found. Try again.")
			s.console.Pause(s.Config.MessagePause)
			return nil, nil
		}

		s.console.Printf("\nFound %d results:\n\n", len(places))
		for i, p := range places {
			s.console.Printf("%d. %s\n", i+1, p.Label())
		}
		s.console.Println("0. Search again")

		choice, err := s.console.Prompt("\nChoose a location: ")
		if err != nil {
			return nil, err
		}
		if choice == "0" {
			continue
		}
		n, ok := parseChoice(choice, len(places))
		if !ok {
			return nil, nil
		}
		loc := places[n-1].Location()
		return &loc, nil
	}
}

// searchPlaces scopes the address to the base city. A failed lookup counts as no results.
func (s *Simulator) searchPlaces(ctx context.Context, address string) []models.Place {
	ctx, cancel := context.WithTimeout(ctx, s.Config.GeocodeTimeout)
	defer cancel()

	query := fmt.Sprintf("%s, %s", address, s.City)
	res := s.geocoder.Search(ctx, query, s.Config.ResultLimit)
	if res.Err != nil {
		log.Printf("No results for %q: %v", query, res.Err)
	}
	places := res.PlacesOrEmpty()
	if len(places) > s.Config.ResultLimit {
		places = places[:s.Config.ResultLimit]
	}
	return places
}
