package factories

import (
	"math/rand"
	"strings"

	"github.com/chrisdamba/tripsim/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

const (
	minDriverDistance = 0.5 // km
	maxDriverDistance = 5.0
)

// seedDrivers is the fixed roster every session starts with.
var seedDrivers = []models.Driver{
	{Name: "João Silva", Plate: "ABC-1234", Model: "Toyota Corolla", Rating: 4.8},
	{Name: "Maria Santos", Plate: "DEF-5678", Model: "Honda Civic", Rating: 4.9},
	{Name: "Pedro Oliveira", Plate: "GHI-9012", Model: "Chevrolet Onix", Rating: 4.7},
	{Name: "Ana Costa", Plate: "JKL-3456", Model: "Volkswagen Gol", Rating: 4.6},
	{Name: "Carlos Souza", Plate: "MNO-7890", Model: "Fiat Argo", Rating: 4.9},
}

type DriverFactory struct {
	rng  *rand.Rand
	fake faker.Faker
}

func NewDriverFactory(rng *rand.Rand) *DriverFactory {
	return &DriverFactory{
		rng:  rng,
		fake: faker.NewWithSeed(rand.NewSource(rng.Int63())),
	}
}

// CreateRoster builds the seed drivers plus config.ExtraDrivers generated ones.
// Each driver's distance from the rider is drawn here and nowhere else.
func (df *DriverFactory) CreateRoster(config *models.Config) []*models.Driver {
	roster := make([]*models.Driver, 0, len(seedDrivers)+config.ExtraDrivers)
	for _, seed := range seedDrivers {
		driver := seed
		driver.ID = cuid.New()
		driver.Distance = df.sampleDistance()
		roster = append(roster, &driver)
	}
	for i := 0; i < config.ExtraDrivers; i++ {
		roster = append(roster, df.CreateDriver())
	}
	return roster
}

// CreateDriver generates a random driver.
func (df *DriverFactory) CreateDriver() *models.Driver {
	car := df.fake.Car()
	return &models.Driver{
		ID:       cuid.New(),
		Name:     df.fake.Person().Name(),
		Plate:    strings.ToUpper(df.fake.Bothify("???-####")),
		Model:    car.Maker() + " " + car.Model(),
		Rating:   df.fake.Float64(1, 4, 5),
		Distance: df.sampleDistance(),
	}
}

func (df *DriverFactory) sampleDistance() float64 {
	return minDriverDistance + df.rng.Float64()*(maxDriverDistance-minDriverDistance)
}
