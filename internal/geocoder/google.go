package geocoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrisdamba/tripsim/internal/models"
	"googlemaps.github.io/maps"
)

// Google resolves addresses with the Google Maps Geocoding API.
type Google struct {
	client *maps.Client
}

func NewGoogle(apiKey string) (*Google, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Search(ctx context.Context, query string, limit int) Result {
	if strings.TrimSpace(query) == "" {
		return Failed(ErrEmptyQuery)
	}

	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return Failed(fmt.Errorf("geocoding api error: %w", err))
	}

	places := make([]models.Place, 0, limit)
	for _, r := range resp {
		if len(places) == limit {
			break
		}
		places = append(places, models.Place{
			DisplayName: r.FormattedAddress,
			Lat:         r.Geometry.Location.Lat,
			Lon:         r.Geometry.Location.Lng,
		})
	}
	return OK(places)
}
