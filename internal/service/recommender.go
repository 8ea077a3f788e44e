package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/utils"
)

// RecommenderOptions holds the eligibility and ordering thresholds
type RecommenderOptions struct {
	MaxDistanceMeters float64
	MaxCongestion     float64
	DetourFactor      float64
	CongestionBand    float64
}

// DefaultRecommenderOptions returns the thresholds the guide ships with
func DefaultRecommenderOptions() RecommenderOptions {
	return RecommenderOptions{
		MaxDistanceMeters: 600,
		MaxCongestion:     0.8,
		DetourFactor:      2,
		CongestionBand:    0.1,
	}
}

// ReasonDetour is attached to destinations dropped by the detour bound
const ReasonDetour = "congestion-first route is more than double the distance-first route"

// RecommendInput is everything one recommendation pass depends on besides
// facility state. Now must be supplied by the caller.
type RecommendInput struct {
	Selection domain.Selection
	Position  domain.LatLng
	Now       domain.ClockTime
}

// RouteRecommender scores and orders the visitor's chosen destinations.
// It keeps no state between calls.
type RouteRecommender struct {
	calendar *EventCalendar
	opts     RecommenderOptions
	metrics  *Metrics
}

// NewRouteRecommender creates a recommender. Zero-valued options fall back
// to DefaultRecommenderOptions.
func NewRouteRecommender(calendar *EventCalendar, opts RecommenderOptions, metrics *Metrics) *RouteRecommender {
	if opts == (RecommenderOptions{}) {
		opts = DefaultRecommenderOptions()
	}
	if calendar == nil {
		calendar = NewEventCalendar(nil)
	}
	return &RouteRecommender{calendar: calendar, opts: opts, metrics: metrics}
}

// Recommend returns every selected destination exactly once, recommended
// ones first. It returns nil for an empty selection. Ids the snapshot does
// not know are skipped.
func (r *RouteRecommender) Recommend(in RecommendInput, snap FacilitySnapshot) *domain.Recommendation {
	if len(in.Selection.DestinationIDs) == 0 {
		return nil
	}
	attending := toSet(in.Selection.AttendingEventIDs)
	forced := toSet(in.Selection.ForcedRecommendationIDs)

	seen := make(map[string]bool, len(in.Selection.DestinationIDs))
	dests := make([]domain.RecommendedDestination, 0, len(in.Selection.DestinationIDs))
	for _, id := range in.Selection.DestinationIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := snap.Find(id)
		if !ok {
			continue
		}
		d := r.enrich(f, in, attending)
		r.gate(&d)
		if forced[id] {
			force(&d)
		}
		dests = append(dests, d)
	}

	rec := &domain.Recommendation{Mode: domain.OrderCongestionFirst}
	r.decideMode(rec, dests, in.Position, forced)
	rec.Destinations = dests

	slices.SortStableFunc(rec.Destinations, func(a, b domain.RecommendedDestination) int {
		return r.compare(rec.Mode, a, b)
	})

	r.metrics.observeRecommendation(rec.Mode)
	return rec
}

// enrich attaches event urgency and straight-line distance. Attendance may
// be keyed by either the facility id or the event id.
func (r *RouteRecommender) enrich(f domain.Facility, in RecommendInput, attending map[string]bool) domain.RecommendedDestination {
	d := domain.RecommendedDestination{
		Facility:       f,
		DistanceMeters: in.Position.DistanceTo(f.Position()),
		Recommended:    true,
	}
	if ev, ok := r.calendar.FindEvent(f.ID); ok {
		until := ev.MinutesUntilStart(in.Now)
		d.Event = &ev
		d.HasEvent = true
		d.TimeUntilEventMinutes = &until
		d.IsAttending = attending[f.ID] || attending[ev.ID]
		if !d.IsAttending {
			d.PriorityScore = eventPriority(until)
		}
	}
	return d
}

// eventPriority maps minutes until start onto the urgency ladder; lower is
// more urgent.
func eventPriority(minutesUntil int) int {
	switch {
	case minutesUntil < 0:
		return 10
	case minutesUntil <= 30:
		return 1
	case minutesUntil <= 60:
		return 2
	case minutesUntil <= 120:
		return 3
	default:
		return 5
	}
}

func (r *RouteRecommender) gate(d *domain.RecommendedDestination) {
	var reasons []string
	if d.DistanceMeters > r.opts.MaxDistanceMeters {
		reasons = append(reasons, fmt.Sprintf("too far to be practical (%.0fm, limit %.0fm)", d.DistanceMeters, r.opts.MaxDistanceMeters))
	}
	if d.CongestionLevel > r.opts.MaxCongestion {
		reasons = append(reasons, fmt.Sprintf("very crowded (%.0f%% of capacity)", d.CongestionLevel*100))
	}
	if len(reasons) > 0 {
		d.Recommended = false
		d.NotRecommendedReason = strings.Join(reasons, "; ")
	}
}

func force(d *domain.RecommendedDestination) {
	d.Recommended = true
	d.NotRecommendedReason = ""
	d.Forced = true
}

// decideMode applies the detour bound over the recommended subset. When the
// congestion-first chain is more than DetourFactor times the distance-first
// chain, every recommended destination that was not forced is dropped.
func (r *RouteRecommender) decideMode(rec *domain.Recommendation, dests []domain.RecommendedDestination, from domain.LatLng, forced map[string]bool) {
	var byDistance, byCongestion []domain.RecommendedDestination
	for _, d := range dests {
		if d.Recommended {
			byDistance = append(byDistance, d)
		}
	}
	byCongestion = slices.Clone(byDistance)
	slices.SortStableFunc(byDistance, func(a, b domain.RecommendedDestination) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
	slices.SortStableFunc(byCongestion, func(a, b domain.RecommendedDestination) int {
		return cmp.Compare(a.CongestionLevel, b.CongestionLevel)
	})

	rec.DistanceOrderMeters = chainDistance(from, byDistance)
	rec.CongestionOrderMeters = chainDistance(from, byCongestion)
	if rec.CongestionOrderMeters <= r.opts.DetourFactor*rec.DistanceOrderMeters {
		return
	}

	rec.Mode = domain.OrderDistanceFirst
	for i := range dests {
		if dests[i].Recommended && !forced[dests[i].ID] {
			dests[i].Recommended = false
			dests[i].NotRecommendedReason = ReasonDetour
		}
	}
}

// chainDistance is the walked distance visiting dests in the given order
func chainDistance(from domain.LatLng, dests []domain.RecommendedDestination) float64 {
	total := 0.0
	current := from
	for _, d := range dests {
		next := d.Position()
		total += current.DistanceTo(next)
		current = next
	}
	return total
}

func (r *RouteRecommender) compare(mode domain.OrderingMode, a, b domain.RecommendedDestination) int {
	if a.Recommended != b.Recommended {
		return boolFirst(a.Recommended)
	}
	if a.IsAttending != b.IsAttending {
		return boolFirst(a.IsAttending)
	}
	switch {
	case a.HasEvent && b.HasEvent:
		if c := cmp.Compare(a.PriorityScore, b.PriorityScore); c != 0 {
			return c
		}
	case a.HasEvent != b.HasEvent:
		return boolFirst(a.HasEvent)
	}
	if mode == domain.OrderCongestionFirst {
		if diff := a.CongestionLevel - b.CongestionLevel; utils.Abs(diff) > r.opts.CongestionBand {
			return cmp.Compare(a.CongestionLevel, b.CongestionLevel)
		}
	}
	return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
}

// boolFirst orders the true side first, given the two sides differ
func boolFirst(aTrue bool) int {
	if aTrue {
		return -1
	}
	return 1
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
