package simulator

import (
	"math"
	"strconv"
	"strings"

	"github.com/chrisdamba/tripsim/internal/models"
)

const earthRadiusKm = 6371.0 // Earth's mean radius in kilometers

const logo = `----------------------------------------
         TRANSPORTE EXPRESS
----------------------------------------`

// calculateDistance returns the great-circle distance between two locations in km.
func calculateDistance(loc1, loc2 models.Location) float64 {
	lat1 := degreesToRadians(loc1.Lat)
	lon1 := degreesToRadians(loc1.Lon)
	lat2 := degreesToRadians(loc2.Lat)
	lon2 := degreesToRadians(loc2.Lon)

	// Haversine formula
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// sampleDrivers picks up to MaxAvailableDrivers distinct drivers uniformly at random.
func (s *Simulator) sampleDrivers() []*models.Driver {
	n := min(s.Config.MaxAvailableDrivers, len(s.Drivers))
	available := make([]*models.Driver, 0, n)
	for _, i := range s.Rng.Perm(len(s.Drivers))[:n] {
		available = append(available, s.Drivers[i])
	}
	return available
}

// quotePrice is base fare plus a per-km rate plus uniform jitter. Every call is a fresh draw.
func (s *Simulator) quotePrice(distanceKm float64) float64 {
	jitter := s.Config.PriceJitterMin + s.Rng.Float64()*(s.Config.PriceJitterMax-s.Config.PriceJitterMin)
	return s.Config.BaseFare + distanceKm*s.Config.PerKmRate + jitter
}

// parseChoice accepts a plain decimal number in [1, n].
func parseChoice(input string, n int) (int, bool) {
	if input == "" || strings.TrimLeft(input, "0123456789") != "" {
		return 0, false
	}
	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > n {
		return 0, false
	}
	return choice, true
}

// parseRating accepts a single digit from 1 to 5.
func parseRating(input string) (int, bool) {
	if len(input) != 1 {
		return 0, false
	}
	return parseChoice(input, 5)
}
