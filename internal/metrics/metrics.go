package metrics

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the simulator's prometheus metrics. All methods are safe on a nil receiver.
type Collector struct {
	reg *prometheus.Registry

	GeocodeRequests *prometheus.CounterVec // outcome label: ok|empty|error|cache_hit
	GeocodeDuration prometheus.Histogram

	RidesRequested prometheus.Counter
	RidesAborted   *prometheus.CounterVec // reason label
	TripsCompleted prometheus.Counter
	TripDistance   prometheus.Histogram
	Ratings        *prometheus.CounterVec // stars label
	HistoryLength  prometheus.Gauge

	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsim_geocode_requests_total",
			Help: "Geocoding lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsim_geocode_duration_seconds",
			Help:    "Latency of geocoding lookups that reached the provider.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		RidesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsim_rides_requested_total",
			Help: "Ride requests started from the menu.",
		}),
		RidesAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsim_rides_aborted_total",
			Help: "Ride requests that returned to the menu without a trip.",
		}, []string{"reason"}),
		TripsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsim_trips_completed_total",
			Help: "Trips appended to the history.",
		}),
		TripDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsim_trip_distance_km",
			Help:    "Distance of completed trips.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		Ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsim_driver_ratings_total",
			Help: "Accepted driver ratings by star value.",
		}, []string{"stars"}),
		HistoryLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripsim_history_length",
			Help: "Number of trips in the session history.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsim_events_published_total",
			Help: "Trip events written to the configured sink.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsim_event_publish_errors_total",
			Help: "Trip events the sink failed to write.",
		}),
	}

	reg.MustRegister(
		c.GeocodeRequests, c.GeocodeDuration,
		c.RidesRequested, c.RidesAborted,
		c.TripsCompleted, c.TripDistance,
		c.Ratings, c.HistoryLength,
		c.EventsPublished, c.EventPublishErrs,
	)

	return c
}

func (c *Collector) GeocodeObserve(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.GeocodeRequests.WithLabelValues(outcome).Inc()
	c.GeocodeDuration.Observe(d.Seconds())
}

func (c *Collector) GeocodeCacheHit() {
	if c == nil {
		return
	}
	c.GeocodeRequests.WithLabelValues("cache_hit").Inc()
}

func (c *Collector) RideRequested() {
	if c == nil {
		return
	}
	c.RidesRequested.Inc()
}

func (c *Collector) RideAborted(reason string) {
	if c == nil {
		return
	}
	c.RidesAborted.WithLabelValues(reason).Inc()
}

func (c *Collector) TripCompleted(distanceKm float64, historyLen int) {
	if c == nil {
		return
	}
	c.TripsCompleted.Inc()
	c.TripDistance.Observe(distanceKm)
	c.HistoryLength.Set(float64(historyLen))
}

func (c *Collector) DriverRated(stars int) {
	if c == nil {
		return
	}
	c.Ratings.WithLabelValues(strconv.Itoa(stars)).Inc()
}

func (c *Collector) EventPublished(err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.EventPublishErrs.Inc()
		return
	}
	c.EventsPublished.Inc()
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
