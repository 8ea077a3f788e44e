package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zooguide/backend/internal/domain"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	congestionTicks    prometheus.Counter
	facilityRatio      *prometheus.GaugeVec
	recommendations    *prometheus.CounterVec
	navTransitions     *prometheus.CounterVec
	waypointHops       prometheus.Histogram
	positionsThrottled prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		congestionTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zooguide",
			Name:      "congestion_ticks_total",
			Help:      "Number of simulated occupancy ticks applied.",
		}),
		facilityRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "zooguide",
			Name:      "facility_congestion_ratio",
			Help:      "Visitors divided by capacity per facility.",
		}, []string{"facility"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zooguide",
			Name:      "recommendations_total",
			Help:      "Route recommendations computed, by ordering mode.",
		}, []string{"mode"}),
		navTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zooguide",
			Name:      "navigation_transitions_total",
			Help:      "Navigation state transitions, by target state.",
		}, []string{"state"}),
		waypointHops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zooguide",
			Name:      "waypoint_hops",
			Help:      "Intermediate waypoints chained per leg.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 30},
		}),
		positionsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zooguide",
			Name:      "positions_throttled_total",
			Help:      "Position updates stored without re-running navigation.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.congestionTicks, m.facilityRatio, m.recommendations,
			m.navTransitions, m.waypointHops, m.positionsThrottled)
	}
	return m
}

func (m *Metrics) observeTick(snap FacilitySnapshot) {
	if m == nil {
		return
	}
	m.congestionTicks.Inc()
	for _, f := range snap.Facilities {
		m.facilityRatio.WithLabelValues(f.ID).Set(f.CongestionLevel)
	}
}

func (m *Metrics) observeRecommendation(mode domain.OrderingMode) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) observeTransition(state NavState) {
	if m == nil {
		return
	}
	m.navTransitions.WithLabelValues(string(state)).Inc()
}

func (m *Metrics) observeHops(n int) {
	if m == nil {
		return
	}
	m.waypointHops.Observe(float64(n))
}

func (m *Metrics) observeThrottled() {
	if m == nil {
		return
	}
	m.positionsThrottled.Inc()
}
