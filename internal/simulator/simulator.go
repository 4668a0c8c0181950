package simulator

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/chrisdamba/tripsim/internal/console"
	"github.com/chrisdamba/tripsim/internal/factories"
	"github.com/chrisdamba/tripsim/internal/geocoder"
	"github.com/chrisdamba/tripsim/internal/metrics"
	"github.com/chrisdamba/tripsim/internal/models"
)

// Simulator is one interactive session: the roster, the base city and the
// history of completed trips. It is used from a single goroutine.
type Simulator struct {
	Config  *models.Config
	City    string
	Drivers []*models.Driver
	History []models.Trip
	Rng     *rand.Rand
	Clock   func() time.Time

	console  *console.Console
	geocoder geocoder.Geocoder
	output   OutputDestination
	metrics  *metrics.Collector
}

func NewSimulator(config *models.Config, con *console.Console, geo geocoder.Geocoder, output OutputDestination, m *metrics.Collector) *Simulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if output == nil {
		output = NoopOutput{}
	}

	sim := &Simulator{
		Config:   config,
		City:     config.City,
		Rng:      rand.New(rand.NewSource(seed)),
		Clock:    time.Now,
		console:  con,
		geocoder: geo,
		output:   output,
		metrics:  m,
	}
	sim.Drivers = factories.NewDriverFactory(sim.Rng).CreateRoster(config)
	return sim
}

// Run shows the main menu until the user exits or the input ends.
func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Session started in %s with %d drivers", s.City, len(s.Drivers))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		option, err := s.mainMenu()
		if err != nil {
			return endOfInput(err)
		}

		switch option {
		case models.MenuRequestRide:
			err = s.RequestRide(ctx)
		case models.MenuHistory:
			err = s.ShowHistory()
		case models.MenuChangeCity:
			err = s.ChangeCity()
		case models.MenuExit:
			s.console.Clear()
			s.console.Println("Goodbye!")
			log.Printf("Session finished with %d trips", len(s.History))
			return nil
		default:
			s.console.Println("Invalid option!")
			s.console.Pause(s.Config.ShortPause)
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func (s *Simulator) mainMenu() (string, error) {
	s.screen()
	s.console.Printf("Base city: %s\n\n", s.City)
	s.console.Println("1. Request a ride")
	s.console.Println("2. Past rides")
	s.console.Println("3. Change base city")
	s.console.Println("4. Exit")
	s.console.Println()
	return s.console.Prompt("Choose an option: ")
}

// ChangeCity replaces the base city with non-empty input and keeps it otherwise.
func (s *Simulator) ChangeCity() error {
	s.screen()
	s.console.Println("CHANGE BASE CITY")
	s.console.Println()
	city, err := s.console.Prompt("Enter city and state (e.g. São Paulo, SP): ")
	if err != nil {
		return err
	}
	if city != "" {
		s.City = city
		s.console.Printf("City changed to: %s\n", s.City)
		log.Printf("Base city changed to %s", s.City)
	} else {
		s.console.Println("City not changed")
	}
	s.console.Pause(s.Config.MessagePause)
	return nil
}

// Close releases the output destination.
func (s *Simulator) Close() error {
	return s.output.Close()
}

func (s *Simulator) screen() {
	s.console.Clear()
	s.console.Println(logo)
	s.console.Println()
}

func (s *Simulator) publish(topic, key string, event any) {
	msg, err := serializeEvent(topic, key, event)
	if err != nil {
		log.Printf("Error serializing event: %v", err)
		return
	}
	err = s.output.WriteMessage(msg.Topic, msg.Key, msg.Message)
	if err != nil {
		log.Printf("Failed to write message: %v", err)
	}
	s.metrics.EventPublished(err)
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
