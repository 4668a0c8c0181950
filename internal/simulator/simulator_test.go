package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/chrisdamba/tripsim/internal/console"
	"github.com/chrisdamba/tripsim/internal/geocoder"
	"github.com/chrisdamba/tripsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	praca = models.Place{
		DisplayName: "Praça da Matriz, Centro Histórico, Porto Alegre, Região Metropolitana de Porto Alegre, Rio Grande do Sul, Brasil",
		Lat:         -30.0346,
		Lon:         -51.2177,
	}
	mercado = models.Place{
		DisplayName: "Mercado Público, Centro Histórico, Porto Alegre, Região Metropolitana de Porto Alegre, Rio Grande do Sul, Brasil",
		Lat:         -30.0277,
		Lon:         -51.2287,
	}
)

type stubGeocoder struct {
	results map[string]geocoder.Result
	queries []string
}

func (g *stubGeocoder) Search(ctx context.Context, query string, limit int) geocoder.Result {
	g.queries = append(g.queries, query)
	if r, ok := g.results[query]; ok {
		return r
	}
	return geocoder.OK(nil)
}

func portoAlegreGeocoder() *stubGeocoder {
	return &stubGeocoder{results: map[string]geocoder.Result{
		"Praça da Matriz, Porto Alegre, RS": geocoder.OK([]models.Place{praca}),
		"Mercado Público, Porto Alegre, RS": geocoder.OK([]models.Place{mercado}),
	}}
}

type recordedMessage struct {
	topic, key string
	msg        []byte
}

type recordingOutput struct {
	messages []recordedMessage
}

func (r *recordingOutput) WriteMessage(topic, key string, msg []byte) error {
	r.messages = append(r.messages, recordedMessage{topic, key, msg})
	return nil
}

func (r *recordingOutput) Close() error { return nil }

func newTestSimulator(input string, geo geocoder.Geocoder, output OutputDestination) (*Simulator, *bytes.Buffer) {
	cfg := models.DefaultConfig()
	cfg.Seed = 42
	cfg.ApplyFast()

	out := &bytes.Buffer{}
	con := console.New(strings.NewReader(input), out).WithSleep(func(time.Duration) {})
	sim := NewSimulator(cfg, con, geo, output, nil)
	sim.Clock = func() time.Time { return time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local) }
	return sim, out
}

// rideScript selects the first match for both addresses, the first driver, and rates 5 stars.
const rideScript = "1\nPraça da Matriz\n1\nMercado Público\n1\n1\n\n5\n"

func TestScreen_PrintsLogoOnce(t *testing.T) {
	sim, out := newTestSimulator("", portoAlegreGeocoder(), nil)
	sim.screen()

	assert.False(t, strings.HasSuffix(logo, "\n"))
	assert.Equal(t, logo+"\n\n", out.String())
	assert.Equal(t, 1, strings.Count(out.String(), "TRANSPORTE EXPRESS"))
}

func TestCalculateDistance(t *testing.T) {
	a := praca.Location()
	b := mercado.Location()

	t.Run("Porto Alegre centre", func(t *testing.T) {
		assert.InDelta(t, 1.30, calculateDistance(a, b), 0.02)
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]models.Location{
			{a, b},
			{{Lat: 40.7128, Lon: -74.0060}, {Lat: 34.0522, Lon: -118.2437}},
			{{Lat: 89.9, Lon: 179.9}, {Lat: -89.9, Lon: -179.9}},
		}
		for _, p := range pairs {
			assert.Equal(t, calculateDistance(p[0], p[1]), calculateDistance(p[1], p[0]))
		}
	})

	t.Run("same point", func(t *testing.T) {
		assert.Equal(t, 0.0, calculateDistance(a, a))
	})

	t.Run("New York to Los Angeles", func(t *testing.T) {
		d := calculateDistance(models.Location{Lat: 40.7128, Lon: -74.0060}, models.Location{Lat: 34.0522, Lon: -118.2437})
		assert.InDelta(t, 3944, d, 50)
	})

	t.Run("NaN propagates", func(t *testing.T) {
		d := calculateDistance(models.Location{Lat: math.NaN()}, b)
		assert.True(t, math.IsNaN(d))
	})
}

func TestSampleDrivers(t *testing.T) {
	sim, _ := newTestSimulator("", &stubGeocoder{}, nil)

	for i := 0; i < 50; i++ {
		available := sim.sampleDrivers()
		require.Len(t, available, 3)
		seen := make(map[string]bool)
		for _, d := range available {
			assert.False(t, seen[d.ID], "driver %s sampled twice", d.Name)
			seen[d.ID] = true
		}
	}

	sim.Drivers = sim.Drivers[:2]
	assert.Len(t, sim.sampleDrivers(), 2)

	sim.Drivers = nil
	assert.Empty(t, sim.sampleDrivers())
}

func TestQuotePrice(t *testing.T) {
	sim, _ := newTestSimulator("", &stubGeocoder{}, nil)
	for i := 0; i < 100; i++ {
		price := sim.quotePrice(2)
		assert.GreaterOrEqual(t, price, 5.0+5.0-2)
		assert.LessOrEqual(t, price, 5.0+5.0+3)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  int
		ok    bool
	}{
		{"1", 3, 1, true},
		{"3", 3, 3, true},
		{"4", 3, 0, false},
		{"0", 3, 0, false},
		{"-1", 3, 0, false},
		{"+1", 3, 0, false},
		{"1.0", 3, 0, false},
		{"abc", 3, 0, false},
		{"", 3, 0, false},
		{"02", 3, 2, true},
	}
	for _, tt := range tests {
		got, ok := parseChoice(tt.input, tt.n)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseRating(t *testing.T) {
	for _, in := range []string{"1", "2", "3", "4", "5"} {
		_, ok := parseRating(in)
		assert.True(t, ok, "rating %q", in)
	}
	for _, in := range []string{"0", "6", "9", "05", "", "five", "*"} {
		_, ok := parseRating(in)
		assert.False(t, ok, "rating %q", in)
	}
}

func TestResolveLocation_ListsCandidates(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d candidates", n), func(t *testing.T) {
			places := make([]models.Place, n)
			for i := range places {
				places[i] = models.Place{DisplayName: fmt.Sprintf("Rua %d, Bairro, Porto Alegre, RS, Brasil", i+1)}
			}
			geo := &stubGeocoder{results: map[string]geocoder.Result{"Rua, Porto Alegre, RS": geocoder.OK(places)}}

			// an out of range choice is no selection
			sim, out := newTestSimulator(fmt.Sprintf("Rua\n%d\n", n+1), geo, nil)
			loc, err := sim.resolveLocation(context.Background(), "Address: ")
			require.NoError(t, err)
			assert.Nil(t, loc)

			text := out.String()
			assert.Contains(t, text, fmt.Sprintf("Found %d results", n))
			for i := 1; i <= n; i++ {
				assert.Contains(t, text, fmt.Sprintf("%d. Rua %d, Bairro, Porto Alegre\n", i, i))
			}
			assert.NotContains(t, text, fmt.Sprintf("%d. Rua", n+1))
			assert.Contains(t, text, "0. Search again")
		})
	}
}

func TestResolveLocation_NoCandidates(t *testing.T) {
	geo := &stubGeocoder{results: map[string]geocoder.Result{
		"Nowhere, Porto Alegre, RS": geocoder.Failed(geocoder.ErrStatus),
	}}
	sim, out := newTestSimulator("Nowhere\nElsewhere\n", geo, nil)

	for i := 0; i < 2; i++ {
		loc, err := sim.resolveLocation(context.Background(), "Address: ")
		require.NoError(t, err)
		assert.Nil(t, loc)
	}
	assert.Equal(t, 2, strings.Count(out.String(), "No location found"))
	assert.NotContains(t, out.String(), "Search again")
}

func TestResolveLocation_EmptyAddress(t *testing.T) {
	geo := &stubGeocoder{}
	sim, _ := newTestSimulator("\n", geo, nil)

	loc, err := sim.resolveLocation(context.Background(), "Address: ")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.Empty(t, geo.queries)
}

func TestResolveLocation_SearchAgain(t *testing.T) {
	geo := &stubGeocoder{results: map[string]geocoder.Result{
		"Matriz, Porto Alegre, RS":  geocoder.OK([]models.Place{praca}),
		"Mercado, Porto Alegre, RS": geocoder.OK([]models.Place{praca, mercado}),
	}}
	sim, _ := newTestSimulator("Matriz\n0\nMercado\n2\n", geo, nil)

	loc, err := sim.resolveLocation(context.Background(), "Address: ")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Mercado Público", loc.Name)
	assert.Equal(t, mercado.DisplayName, loc.FullName)
	assert.Equal(t, mercado.Lat, loc.Lat)
	assert.Equal(t, mercado.Lon, loc.Lon)
	assert.Equal(t, []string{"Matriz, Porto Alegre, RS", "Mercado, Porto Alegre, RS"}, geo.queries)
}

func TestResolveLocation_NonNumericChoice(t *testing.T) {
	sim, _ := newTestSimulator("Praça da Matriz\nfirst\n", portoAlegreGeocoder(), nil)

	loc, err := sim.resolveLocation(context.Background(), "Address: ")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestRun_PortoAlegreRide(t *testing.T) {
	output := &recordingOutput{}
	sim, out := newTestSimulator(rideScript+"4\n", portoAlegreGeocoder(), output)

	require.NoError(t, sim.Run(context.Background()))

	require.Len(t, sim.History, 1)
	trip := sim.History[0]
	assert.Equal(t, "Praça da Matriz", trip.Origin)
	assert.Equal(t, "Mercado Público", trip.Destination)
	assert.InDelta(t, 1.30, trip.DistanceKm, 0.02)
	assert.Greater(t, trip.Price, 0.0)
	assert.Equal(t, 3, trip.DurationMinutes)
	assert.Equal(t, "19/10/2026 14:30", trip.FormattedDate())
	assert.NotEmpty(t, trip.ID)

	text := out.String()
	assert.Contains(t, text, "Looking for drivers...")
	assert.Contains(t, text, "Distance: 1.3 km")
	assert.Contains(t, text, "Trip completed!")
	assert.Contains(t, text, fmt.Sprintf("Price: R$ %.2f", trip.Price))
	assert.Contains(t, text, "Thanks for the rating!")
	assert.Contains(t, text, "Goodbye!")

	require.Len(t, output.messages, 2)
	completed := output.messages[0]
	assert.Equal(t, models.TopicTripCompleted, completed.topic)
	assert.Equal(t, encodeGeohash(praca.Lat, praca.Lon), completed.key)

	var event TripCompletedEvent
	require.NoError(t, json.Unmarshal(completed.msg, &event))
	assert.Equal(t, trip.ID, event.TripID)
	assert.Equal(t, trip.Price, event.Price)
	assert.Equal(t, "Porto Alegre, RS", event.City)

	rated := output.messages[1]
	assert.Equal(t, models.TopicDriverRated, rated.topic)
	var ratedEvent DriverRatedEvent
	require.NoError(t, json.Unmarshal(rated.msg, &ratedEvent))
	assert.Equal(t, 5, ratedEvent.Stars)
	assert.Equal(t, trip.ID, ratedEvent.TripID)
}

func TestRun_TooCloseToRide(t *testing.T) {
	geo := &stubGeocoder{results: map[string]geocoder.Result{
		"Praça da Matriz, Porto Alegre, RS": geocoder.OK([]models.Place{praca}),
		"Palácio Piratini, Porto Alegre, RS": geocoder.OK([]models.Place{{
			DisplayName: "Palácio Piratini, Centro Histórico, Porto Alegre",
			Lat:         -30.0338,
			Lon:         -51.2170,
		}}),
	}}
	sim, out := newTestSimulator("1\nPraça da Matriz\n1\nPalácio Piratini\n1\n4\n", geo, nil)

	require.NoError(t, sim.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Distance too short. Walk instead.")
	assert.NotContains(t, text, "Looking for drivers")
	assert.NotContains(t, text, "Available drivers")
	assert.Empty(t, sim.History)
}

func TestRun_AbortsWithoutDriverChoice(t *testing.T) {
	for _, choice := range []string{"0", "9", "x"} {
		t.Run(choice, func(t *testing.T) {
			script := "1\nPraça da Matriz\n1\nMercado Público\n1\n" + choice + "\n4\n"
			sim, out := newTestSimulator(script, portoAlegreGeocoder(), nil)

			require.NoError(t, sim.Run(context.Background()))
			assert.Contains(t, out.String(), "Available drivers")
			assert.Contains(t, out.String(), "0. Back")
			assert.NotContains(t, out.String(), "Ride confirmed!")
			assert.Empty(t, sim.History)
		})
	}
}

func TestRun_HistoryIsAppendOnly(t *testing.T) {
	sim, out := newTestSimulator(rideScript+rideScript+"2\n\n4\n", portoAlegreGeocoder(), nil)
	distances := make([]float64, len(sim.Drivers))
	for i, d := range sim.Drivers {
		distances[i] = d.Distance
	}

	require.NoError(t, sim.Run(context.Background()))

	require.Len(t, sim.History, 2)
	assert.NotEqual(t, sim.History[0].ID, sim.History[1].ID)
	for _, trip := range sim.History {
		assert.Equal(t, "Praça da Matriz", trip.Origin)
		assert.Equal(t, "Mercado Público", trip.Destination)
	}

	// roster distances are sampled once per session
	for i, d := range sim.Drivers {
		assert.Equal(t, distances[i], d.Distance)
	}

	text := out.String()
	first := strings.Index(text, "1. 19/10/2026 14:30")
	second := strings.Index(text, "2. 19/10/2026 14:30")
	assert.True(t, first >= 0 && second > first, "history entries should be listed in order")
	assert.Contains(t, text, fmt.Sprintf("Price: R$ %.2f", sim.History[1].Price))
}

func TestShowHistory_Empty(t *testing.T) {
	sim, out := newTestSimulator("\n", &stubGeocoder{}, nil)

	require.NoError(t, sim.ShowHistory())
	assert.Contains(t, out.String(), "No rides yet.")
}

func TestRateDriver_DoesNotMutateRecords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1\n", "Thanks for the rating!"},
		{"5\n", "Thanks for the rating!"},
		{"6\n", "Invalid rating"},
		{"0\n", "Invalid rating"},
		{"\n", "Invalid rating"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			sim, out := newTestSimulator(tt.input, &stubGeocoder{}, nil)
			sim.History = []models.Trip{{ID: "trip-1", Driver: sim.Drivers[0].Name, Price: 12.5}}
			historyBefore := append([]models.Trip(nil), sim.History...)
			driverBefore := *sim.Drivers[0]

			require.NoError(t, sim.rateDriver(sim.Drivers[0], "trip-1"))

			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, historyBefore, sim.History)
			assert.Equal(t, driverBefore, *sim.Drivers[0])
		})
	}
}

func TestChangeCity(t *testing.T) {
	sim, out := newTestSimulator("\nCuritiba, PR\n", &stubGeocoder{}, nil)

	require.NoError(t, sim.ChangeCity())
	assert.Equal(t, "Porto Alegre, RS", sim.City)
	assert.Contains(t, out.String(), "City not changed")

	require.NoError(t, sim.ChangeCity())
	assert.Equal(t, "Curitiba, PR", sim.City)
	assert.Contains(t, out.String(), "City changed to: Curitiba, PR")
}

func TestRun_SearchesInBaseCity(t *testing.T) {
	geo := &stubGeocoder{}
	sim, _ := newTestSimulator("3\nCuritiba, PR\n1\nRua XV\n4\n", geo, nil)

	require.NoError(t, sim.Run(context.Background()))
	assert.Equal(t, []string{"Rua XV, Curitiba, PR"}, geo.queries)
}

func TestRun_InvalidOptionAndEOF(t *testing.T) {
	sim, out := newTestSimulator("9\n", &stubGeocoder{}, nil)

	require.NoError(t, sim.Run(context.Background()))
	assert.Contains(t, out.String(), "Invalid option!")
	assert.Equal(t, 2, strings.Count(out.String(), "Choose an option: "))
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestRun_CancelledContext(t *testing.T) {
	sim, _ := newTestSimulator("4\n", &stubGeocoder{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sim.Run(ctx), context.Canceled)
}
