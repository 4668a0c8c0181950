package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/tripsim/internal/models"
)

// Nominatim queries an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         coordinate `json:"lat"`
	Lon         coordinate `json:"lon"`
}

// coordinate accepts a JSON string or number and falls back to 0 when the
// provider omits or garbles a value.
type coordinate float64

func (c *coordinate) UnmarshalJSON(b []byte) error {
	*c = coordinate(parseCoordinate(strings.Trim(string(b), `"`)))
	return nil
}

func NewNominatim(endpoint, userAgent string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

func (n *Nominatim) Search(ctx context.Context, query string, limit int) Result {
	if strings.TrimSpace(query) == "" {
		return Failed(ErrEmptyQuery)
	}

	u, err := url.Parse(n.endpoint)
	if err != nil {
		return Failed(fmt.Errorf("parse endpoint %q: %w", n.endpoint, err))
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("nominatim request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode))
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Failed(fmt.Errorf("%w: %v", ErrDecode, err))
	}

	places := make([]models.Place, 0, len(raw))
	for _, p := range raw {
		places = append(places, models.Place{
			DisplayName: p.DisplayName,
			Lat:         float64(p.Lat),
			Lon:         float64(p.Lon),
		})
	}
	if len(places) > limit {
		places = places[:limit]
	}
	return OK(places)
}

func parseCoordinate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
